// Package resolver decides which registered observers must be notified when
// a class is processed.
//
// Observers are compiled once, at construction, into three groups:
//
//   - universal observers, declared against the top type, which receive
//     every candidate;
//   - pattern observers, declared against Wrapper<X>, compiled to ExactType
//     when X is a concrete class or to UpperBound when X is a wildcard or a
//     type variable;
//   - everything else, which is skipped.
//
// Resolve then looks up the candidate's metadata (once per name, cached for
// the resolver's lifetime) and filters the pattern observers through the
// annotation gate and their pattern:
//
//	r, err := resolver.New(resolver.Config{}, index, observers)
//	if err != nil {
//		return err
//	}
//	set, err := r.Resolve(ctx, "com.example.Widget")
//
// ExactType ignores subtyping on purpose: an observer of Wrapper<Foo> is not
// notified for a subclass of Foo. Observers that need subtypes declare
// Wrapper<? extends Foo>.
package resolver
