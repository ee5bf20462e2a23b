// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package render

import "errors"

// package errors
var (
	ErrNoDevice          = errors.New("no rendering device")
	ErrEmptyShader       = errors.New("shader has no code")
	ErrUnknownShaderType = errors.New("unknown shader type")
	ErrShaderNotReady    = errors.New("shader is not valid")
	ErrShaderStage       = errors.New("shader bound to the wrong stage")
	ErrEmptyBundle       = errors.New("program bundle has no programs")
	ErrEmptyGeometry     = errors.New("mesh has no geometry")
	ErrNoLoader          = errors.New("no loader accepts the mesh")
	ErrLoadCancelled     = errors.New("load cancelled")
)
