// Package types defines the Board interface, the per-entity store
// interfaces, entity types, derived card status and the standard errors of
// the corkboard storage core.
//
// A Board holds projects. Projects own ordered lists and labels, lists own
// ordered cards, cards own ordered subtasks and carry labels through
// card-label associations. Every container keeps its active children in a
// dense 0..n-1 ordering.
package types
