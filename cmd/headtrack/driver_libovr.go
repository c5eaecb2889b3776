//go:build libovr

package main

import _ "github.com/bft-labs/headtrack/pkg/ovr/libovr"
