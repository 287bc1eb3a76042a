package model

import (
	"fmt"
)

// ClassifiedCommit is a commit together with its place in the branch topology.
type ClassifiedCommit struct {
	commit         *Commit
	classification *ChangeClassification
}

func NewClassifiedCommit(commit *Commit, classification *ChangeClassification) (*ClassifiedCommit, error) {
	v := newValidator("ClassifiedCommit")

	if commit == nil {
		v.field("commit", ErrMissing)
	}
	if classification == nil {
		v.field("classification", ErrMissing)
	}

	if v.failed() {
		return nil, v.err()
	}

	return &ClassifiedCommit{
		commit:         commit,
		classification: classification,
	}, nil
}

func (c *ClassifiedCommit) Commit() *Commit {
	return c.commit
}

func (c *ClassifiedCommit) Classification() *ChangeClassification {
	return c.classification
}

func (c *ClassifiedCommit) SHA() string {
	return c.commit.SHA()
}

func (c *ClassifiedCommit) ChangeType() ChangeType {
	return c.classification.changeType
}

func (c *ClassifiedCommit) String() string {
	return fmt.Sprintf("%v [%v]", c.commit, c.classification)
}
