// SPDX-License-Identifier: MPL-2.0

// Package cfgoverride applies command-line overrides to a config tree.
//
// An override entry has the form
//
//	(<path>),(<value>)
//
// where <path> is a comma-separated list of quoted key segments and <value>
// is an expression. Values are evaluated with expr-lang, extended with the
// literals True, False and None and the coercions int, float, str and bool:
//
//	("build_model","activation"),("tanh")
//	("key2","key2.2"),(int(22))
//	("flags",),([1, 2, 3])
package cfgoverride
