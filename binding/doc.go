// Package binding registers a fixed set of native Go types into the host
// runtime in two phases.
//
// Every class and enum is described by a [Descriptor]. [Registrar.DeclareAll]
// creates a placeholder host symbol for each one, parents before children;
// [Registrar.InitAll] then attaches constructors, methods and properties.
// Because every symbol exists before any initializer runs, initializers may
// reference each other's types freely.
//
// Instances handed to the host are owned through a [Holder], which releases
// the native value exactly once. [Borrow] gives a view that never releases.
package binding
