// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build mage

package main

import (
	"errors"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	envRedisAddr     = "REDIS_ADDR"
	envTestRedisAddr = "GOMARKET_TEST_REDIS_ADDR"
	redisPkg         = "./internal/redis/..."
)

// Test groups test targets (all, unit, redis).
type Test mg.Namespace

// All runs all tests. Redis tests run only when REDIS_ADDR is set.
func (Test) All() error {
	return sh.RunWithV(redisEnv(), binGo, "test", "-v", "./...")
}

// Unit runs tests that need no external services.
func (Test) Unit() error {
	return sh.RunWithV(map[string]string{envTestRedisAddr: ""}, binGo, "test", "-v", "./...")
}

// Redis runs the redis backend tests against the server at REDIS_ADDR.
func (Test) Redis() error {
	env := redisEnv()
	if env[envTestRedisAddr] == "" {
		return errors.New(envRedisAddr + " must point at a running redis server")
	}
	return sh.RunWithV(env, binGo, "test", "-v", "-count=1", redisPkg)
}

func redisEnv() map[string]string {
	return map[string]string{envTestRedisAddr: os.Getenv(envRedisAddr)}
}
