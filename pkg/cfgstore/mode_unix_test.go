// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package cfgstore

func runtimeSupportsModes() bool { return true }
