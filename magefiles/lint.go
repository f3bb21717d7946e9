// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build mage

package main

import (
	"fmt"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binLint  = "golangci-lint"
	binGofmt = "gofmt"
)

// lintDirs are the source trees checked by Fmt.
var lintDirs = []string{"cmd", "internal", "pkg", "magefiles"}

// Lint runs go vet, the gofmt check, and golangci-lint.
func Lint() error {
	mg.SerialDeps(Vet, Fmt)
	return sh.RunV(binLint, "run", "./...")
}

// Vet runs go vet over every package.
func Vet() error {
	return sh.RunV(binGo, "vet", "./...")
}

// Fmt fails when any Go file under lintDirs is not gofmt-formatted.
func Fmt() error {
	out, err := sh.Output(binGofmt, append([]string{"-l"}, lintDirs...)...)
	if err != nil {
		return err
	}
	if files := strings.TrimSpace(out); files != "" {
		return fmt.Errorf("files need gofmt:\n%s", files)
	}
	return nil
}
