package arrowdoc

import (
	"time"

	"github.com/google/uuid"
)

// StageCommit is one entry in a stage's commit log.
type StageCommit struct {
	ID        string
	Timestamp int64
	Message   string
	Data      map[int64]Document
}

// stagingArea holds the named scratch areas and their commit logs.
type stagingArea struct {
	stages map[string]map[int64]Document
	log    map[string][]StageCommit
}

func newStagingArea() *stagingArea {
	return &stagingArea{
		stages: make(map[string]map[int64]Document),
		log:    make(map[string][]StageCommit),
	}
}

// getStage returns or creates the named scratch area.
func (s *stagingArea) getStage(name string) map[int64]Document {
	stage, ok := s.stages[name]
	if !ok {
		stage = make(map[int64]Document)
		s.stages[name] = stage
	}
	return stage
}

// stage deep-copies doc and stores it keyed by $id.
func (s *stagingArea) stage(name string, doc Document) error {
	id, ok := getID(doc)
	if !ok {
		return ErrType
	}
	s.getStage(name)[id] = deepCloneDocument(doc)
	return nil
}

// commitLog returns the commit log for name.
func (s *stagingArea) commitLog(name string) []StageCommit {
	return s.log[name]
}

// recordCommit appends a commit entry and empties the stage. The caller
// (Collection.CommitStage) has already applied every staged document via
// update.
func (s *stagingArea) recordCommit(name, message string, data map[int64]Document) {
	s.log[name] = append(s.log[name], StageCommit{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Timestamp: time.Now().UnixMilli(),
		Message:   message,
		Data:      data,
	})
	delete(s.stages, name)
}
