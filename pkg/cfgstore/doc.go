// SPDX-License-Identifier: MPL-2.0

// Package cfgstore persists configuration trees to a directory and loads them
// back.
//
// A saved config consists of three artifacts sharing a tag plus a version
// marker:
//
//	<tag>.all_values_picklable.msgpack   typed snapshot (v3 payload)
//	<tag>.values_as_strings.msgpack      every scalar stringified (v2 payload)
//	<tag>.txt                            rendered config, for humans
//	config_version.txt                   "v3"
//
// The marker is written last, so a directory with payloads but no marker is
// read as the legacy v2 layout.
package cfgstore
