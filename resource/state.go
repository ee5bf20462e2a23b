// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package resource

// State is the lifecycle state of a pool slot.
//
//	Initial -> Setup -> Valid | Failed
//	Initial -> Setup -> Pending -> Valid | Failed
//
// Valid and Failed go back to Initial only through Unassign.
type State uint8

// Slot states.
const (
	Initial State = iota
	Setup
	Pending
	Valid
	Failed
)

var stateNames = [...]string{"Initial", "Setup", "Pending", "Valid", "Failed"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}
