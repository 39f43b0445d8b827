// Package storetest holds the behaviour every save backend must share.
package storetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/stretchr/testify/suite"

	"github.com/tkahng/chopsticks/sticks"
)

// Gateway is what the suite exercises.
type Gateway interface {
	sticks.Gateway
	List(ctx context.Context) ([]string, error)
}

// GatewaySuite runs against a fresh, empty backend per test.
type GatewaySuite struct {
	suite.Suite

	// New returns an empty backend; it is called from SetupTest
	New func() Gateway

	gw  Gateway
	ctx context.Context
}

func (s *GatewaySuite) SetupTest() {
	s.gw = s.New()
	s.ctx = context.Background()
}

func sample(turn int) sticks.Snapshot {
	return sticks.Snapshot{
		Mode:          sticks.ModeStandard,
		Turn:          turn,
		CurrentLeft:   2,
		CurrentRight:  1,
		OpposingLeft:  3,
		OpposingRight: 0,
	}
}

func (s *GatewaySuite) TestLoadNotFound() {
	_, err := s.gw.Load(s.ctx, "nonexistent")
	s.ErrorIs(err, sticks.ErrSaveNotFound)
}

func (s *GatewaySuite) TestSaveAndLoad() {
	s.Require().NoError(s.gw.Save(s.ctx, "game-1", sample(4)))

	got, err := s.gw.Load(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(sample(4), got)
}

func (s *GatewaySuite) TestSaveUpserts() {
	s.Require().NoError(s.gw.Save(s.ctx, "game-1", sample(4)))
	s.Require().NoError(s.gw.Save(s.ctx, "game-1", sample(9)))

	got, err := s.gw.Load(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(9, got.Turn)

	ids, err := s.gw.List(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"game-1"}, ids)
}

func (s *GatewaySuite) TestSaveKeepsOtherIDs() {
	s.Require().NoError(s.gw.Save(s.ctx, "a", sample(1)))
	s.Require().NoError(s.gw.Save(s.ctx, "b", sample(2)))
	s.Require().NoError(s.gw.Save(s.ctx, "a", sample(3)))

	got, err := s.gw.Load(s.ctx, "b")
	s.Require().NoError(err)
	s.Equal(2, got.Turn)

	ids, err := s.gw.List(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"a", "b"}, ids)
}

func (s *GatewaySuite) TestSaveRejectsEmptyID() {
	err := s.gw.Save(s.ctx, " ", sample(1))
	s.ErrorIs(err, sticks.ErrInvalidSnapshot)
}

func (s *GatewaySuite) TestListEmpty() {
	ids, err := s.gw.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(ids)
}

func (s *GatewaySuite) TestConcurrentSavesOfDistinctIDs() {
	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- s.gw.Save(s.ctx, fmt.Sprintf("game-%d", i), sample(i))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	for i := 0; i < n; i++ {
		got, err := s.gw.Load(s.ctx, fmt.Sprintf("game-%d", i))
		s.Require().NoError(err)
		s.Equal(i, got.Turn)
	}
}
