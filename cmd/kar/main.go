// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/koru3d/korures/utility/kar"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/mmap"
)

func init() {
	currentUserName = "unknown"
	if u, err := user.Current(); err == nil {
		currentUserName = u.Username
	}
}

var (
	currentUserName string
	author          = flag.String("author", "", "Set the author of the package when compressing")
	version         = flag.Int64("version", 1, "Archive version number to create it with")
	extract         = flag.String("e", "", "Extract the archive given")
	compress        = flag.String("c", "", "Compress the given file/folder")
	list            = flag.String("l", "", "List the files in the archive given")
	dstFile         = flag.String("f", "out.kar", "Destination file, or directory when extracting")
	silent          = flag.Bool("s", false, "Silent")
)

func main() {
	flag.Parse()
	if *silent {
		log.SetLevel(log.WarnLevel)
	}

	var ops int
	for _, op := range []string{*extract, *compress, *list} {
		if op != "" {
			ops++
		}
	}

	var err error
	switch {
	case ops > 1:
		err = errors.New("only one operation at a time")
	case *extract != "":
		err = extractFiles(*extract, *dstFile)
	case *compress != "":
		err = compressFiles(*compress, *dstFile)
	case *list != "":
		err = listFiles(*list)
	default:
		flag.PrintDefaults()
	}
	if err != nil {
		log.WithError(err).Fatal("kar failed")
	}
}

func compressFiles(src, dstPath string) error {
	if _, err := os.Stat(dstPath); err == nil {
		return errors.New("destination file exists, will not overwrite")
	}

	var filesToCompress []string
	if err := filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		filesToCompress = append(filesToCompress, path)
		return nil
	}); err != nil {
		return err
	}

	name := *author
	if name == "" {
		name = currentUserName
	}
	karBuilder, err := kar.NewBuilder(kar.Header{
		Author:      name,
		DateCreated: time.Now().Unix(),
		Version:     *version,
	})
	if err != nil {
		return err
	}
	defer karBuilder.Close()

	for _, ftc := range filesToCompress {
		if err := addFile(karBuilder, src, ftc); err != nil {
			return err
		}
		log.WithField("file", ftc).Debug("compressed")
	}

	dst, err := os.Create(dstPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	written, err := karBuilder.WriteTo(dst)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"files":   len(filesToCompress),
		"written": written,
	}).Info("archive created")
	return dst.Sync()
}

// addFile stores path in the archive relative to root, with forward slashes.
func addFile(b *kar.Builder, root, path string) error {
	name, err := filepath.Rel(root, path)
	if err != nil || name == "." {
		name = filepath.Base(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return b.Add(filepath.ToSlash(name), f)
}

func openArchive(path string) (*kar.Archive, io.Closer, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, nil, err
	}
	ar, err := kar.Open(r)
	if err != nil {
		r.Close()
		return nil, nil, err
	}
	return ar, r, nil
}

func extractFiles(src, dstDir string) error {
	ar, closer, err := openArchive(src)
	if err != nil {
		return err
	}
	defer closer.Close()

	for _, name := range ar.Names() {
		target := filepath.Join(dstDir, filepath.FromSlash(name))
		if rel, err := filepath.Rel(dstDir, target); err != nil || strings.HasPrefix(rel, "..") {
			return fmt.Errorf("%s escapes the destination directory", name)
		}
		if err := extractFile(ar, name, target); err != nil {
			return err
		}
		log.WithField("file", target).Debug("extracted")
	}
	return nil
}

func extractFile(ar *kar.Archive, name, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	r, err := ar.Open(name)
	if err != nil {
		return err
	}
	f, err := os.Create(target)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return err
	}
	return f.Sync()
}

func listFiles(src string) error {
	ar, closer, err := openArchive(src)
	if err != nil {
		return err
	}
	defer closer.Close()

	header := ar.Header()
	fmt.Printf("author %s, version %d, created %s\n", header.Author, header.Version,
		time.Unix(header.DateCreated, 0).Format(time.RFC3339))
	for _, e := range header.Index {
		fmt.Printf("%10d %10d %s\n", e.Size, e.CompressedSize, e.Name)
	}
	return nil
}
