// Package service groups the application use cases. Each subpackage owns one
// area: auth issues and validates learner tokens, study runs review sessions
// on top of the scheduler, the due-set classifier and the stores.
//
// Services receive their stores and domain services through constructors and
// never depend on a concrete infrastructure package.
package service
