package consensus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTermState_ObserveTerm(t *testing.T) {
	s := NewTermState()
	s.TryVote(7)

	assert.Equal(t, TermSame, s.ObserveTerm(0))

	assert.Equal(t, TermAdvanced, s.ObserveTerm(5))
	assert.Equal(t, Term(5), s.Term())
	if _, hasVoted := s.VotedFor(); hasVoted {
		t.Errorf("expected vote cleared after term advance")
	}

	assert.Equal(t, TermStale, s.ObserveTerm(3))
	assert.Equal(t, Term(5), s.Term())
}

func TestTermState_TryVote_OnePerTerm(t *testing.T) {
	s := NewTermState()

	assert.True(t, s.TryVote(1))
	assert.True(t, s.TryVote(1), "re-voting for the same candidate is idempotent")
	assert.False(t, s.TryVote(2), "a second distinct candidate must be rejected")

	voted, ok := s.VotedFor()
	assert.True(t, ok)
	assert.Equal(t, NodeId(1), voted)
}

func TestTermState_AdvanceCommit_ClampedToPosition(t *testing.T) {
	s := NewTermState()
	s.AdvancePosition(10)

	advanced := s.AdvanceCommit(50)
	assert.True(t, advanced)
	assert.Equal(t, Position(10), s.CommitPosition(), "commit may never exceed locally received position")

	advanced = s.AdvanceCommit(5)
	assert.False(t, advanced, "commit position is monotone non-decreasing")
	assert.Equal(t, Position(10), s.CommitPosition())
}

func TestTermState_StartElection(t *testing.T) {
	s := NewTermState()
	s.SetLeader(99)

	s.StartElection(3, 1)

	assert.Equal(t, Term(1), s.Term())
	voted, ok := s.VotedFor()
	assert.True(t, ok)
	assert.Equal(t, NodeId(3), voted)
	_, hasLeader := s.Leader()
	assert.False(t, hasLeader)
}
