// Package bindexpr compiles arithmetic expressions into trees that can be
// evaluated many times with different bindings.
//
// The syntax is the usual one: "+ - * /" with their ordinary precedence and
// left associativity, unary minus, parentheses, decimal numbers, variables
// such as "x1", and function calls such as "f(x, 2)". A function name may be
// used with several argument counts; "f(x)" and "f(x, y)" refer to two
// different functions, bound separately.
//
// After compiling, bind a value to every variable and a Func to every function
// signature that appears, then call Evaluate. Change a binding and Evaluate
// again to reuse the same compiled tree.
package bindexpr
