package store

import (
	"context"
	"log/slog"

	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/roster"
)

// Roster runs fn against a roster graph and writes every change it
// produces in one transaction. Either all back-references are updated or
// none are.
func (s *Store) Roster(ctx context.Context, fn func(g *roster.Graph) error) (roster.Changes, error) {
	var ch roster.Changes
	err := s.InTx(ctx, func(tx *Store) error {
		g := roster.New(ctx, tx)
		if err := fn(g); err != nil {
			return err
		}
		var err error
		ch, err = g.Changes()
		if err != nil {
			return err
		}
		return tx.applyRoster(ctx, ch)
	})
	if err != nil {
		return ch, err
	}
	slog.Debug("applied roster changes",
		"batches", len(ch.Batches), "deleted_batches", len(ch.DeletedBatches),
		"students", len(ch.Students), "deleted_students", len(ch.DeletedStudents),
		"teachers", len(ch.Teachers), "deleted_teachers", len(ch.DeletedTeachers),
	)
	return ch, nil
}

func (s *Store) applyRoster(ctx context.Context, ch roster.Changes) error {
	for _, id := range ch.DeletedBatches {
		if err := s.deleteBatch(ctx, id); err != nil {
			return err
		}
	}
	for _, id := range ch.DeletedStudents {
		if err := s.deleteStudent(ctx, id); err != nil {
			return err
		}
	}
	for _, id := range ch.DeletedTeachers {
		if err := s.deleteTeacher(ctx, id); err != nil {
			return err
		}
	}
	for _, b := range ch.Batches {
		if err := s.putBatch(ctx, b); err != nil {
			return err
		}
	}
	for _, st := range ch.Students {
		if err := s.saveStudentLinks(ctx, st); err != nil {
			return err
		}
	}
	for _, t := range ch.Teachers {
		if err := s.saveTeacherLinks(ctx, t); err != nil {
			return err
		}
	}
	return nil
}
