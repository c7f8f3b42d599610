// Package driver evaluates driver expressions: small programs reading
// property values through paths and writing their result to a target
// property.
//
// Three engines are available. expr (github.com/expr-lang/expr) is the
// default, cel uses github.com/google/cel-go and js runs on
// github.com/dop251/goja when built with the js_eval tag.
package driver
