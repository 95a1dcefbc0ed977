// Package mocks provides function-field fakes of the service interfaces for
// handler and middleware tests.
//
// Each mock runs its XxxFn field when set and otherwise returns the default
// fields, so a test only wires the behaviour it cares about:
//
//	svc := &mocks.MockStudyService{
//	    NextCardFn: func(ctx context.Context, id domain.LearnerID, req study.NextCardRequest) (*study.NextCard, error) {
//	        return &study.NextCard{Done: true}, nil
//	    },
//	}
package mocks
