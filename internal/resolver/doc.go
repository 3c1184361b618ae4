// Package resolver turns textual reference expressions into link targets.
//
// Resolution is a pure function of the expression, the caller's scope,
// the lens it views the ecosystem through, and an immutable registry. It
// never fails with an error; every outcome is a Selection.
//
// Expression grammar:
//
//	/package[/version]/Module/Type/member(_:)-kind   absolute
//	[version/]Module/Type.member(_:)                  relative, module qualified
//	Type.member                                       relative, scoped
//
// Components are separated by "/" and, outside parentheses, by ".". A
// version token is recognised only as the first "/" component after the
// package (absolute) or the first "/" component (relative), and only when
// it begins with a digit. The last component may carry a parenthesised
// disambiguation suffix and a trailing "-kind" hint.
package resolver
