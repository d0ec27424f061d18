package harness

import (
	"context"

	"github.com/stretchr/testify/suite"

	"github.com/schmitthub/cosytest/pkg/lifecycle"
)

// Suite is a testify suite bound to a lifecycle.Scope. Embed it and set
// Scope before calling suite.Run:
//
//	type OrdersSuite struct {
//		harness.Suite
//	}
//
//	func TestOrders(t *testing.T) {
//		suite.Run(t, &OrdersSuite{Suite: harness.Suite{Scope: lifecycle.New(setup)}})
//	}
//
// Suites that define their own SetupSuite, TearDownTest or TearDownSuite
// must call the embedded method.
type Suite struct {
	suite.Suite

	Scope lifecycle.Scope
}

var (
	_ suite.SetupAllSuite     = (*Suite)(nil)
	_ suite.TearDownTestSuite = (*Suite)(nil)
	_ suite.TearDownAllSuite  = (*Suite)(nil)
)

// SetupSuite brings the scope up, failing the suite if it cannot.
func (s *Suite) SetupSuite() {
	if s.Scope == nil {
		return
	}
	if err := s.Scope.Bootstrap(context.Background()); err != nil {
		s.T().Fatalf("%v", err)
	}
}

// TearDownTest marks the scope failed when the test that just ran failed.
func (s *Suite) TearDownTest() {
	s.observe(s.T().Failed())
}

// TearDownSuite tears the scope down. Failures that only surface after
// TearDownTest, such as panics, are picked up from the suite's own T.
func (s *Suite) TearDownSuite() {
	if s.Scope == nil {
		return
	}
	s.observe(s.T().Failed())
	if err := s.Scope.TearDown(context.Background()); err != nil {
		s.T().Errorf("%v", err)
	}
}

func (s *Suite) observe(failed bool) {
	if failed && s.Scope != nil {
		s.Scope.MarkFailed()
	}
}
