// Package roster keeps the batch, student and teacher back-references
// consistent. Batches are the source of truth: a batch names its teacher
// and students, and every Student.Batches, Student.Teachers,
// Teacher.Batches, Teacher.Students and teacher counter is derived from
// the set of batches.
//
// A Graph collects every change of one cross-entity operation so the
// caller can persist them together.
package roster

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/raj-83/Bootcamp-OLL-Project-sub001/internal/model"
)

// Loader reads the committed state of the entities a Graph touches.
type Loader interface {
	GetBatch(ctx context.Context, id string) (model.Batch, error)
	GetStudent(ctx context.Context, id string) (model.Student, error)
	GetTeacher(ctx context.Context, id string) (model.Teacher, error)
	ListBatchesByTeacher(ctx context.Context, teacherID string) ([]model.Batch, error)
	ListBatchesByStudent(ctx context.Context, studentID string) ([]model.Batch, error)
}

// BatchPatch lists the batch fields to change. Nil fields are kept.
// An empty Teacher unassigns the batch.
type BatchPatch struct {
	BatchName     *string
	Teacher       *string
	Students      *[]string
	StartDate     *time.Time
	EndDate       *time.Time
	ScheduleDays  *[]string
	SessionTime   *string
	TargetRevenue *decimal.Decimal
}

// Changes is everything a Graph wants written.
type Changes struct {
	Batches         []model.Batch
	DeletedBatches  []string
	Students        []model.Student
	DeletedStudents []string
	Teachers        []model.Teacher
	DeletedTeachers []string
}

// Graph is a unit of work over the roster.
type Graph struct {
	ctx    context.Context
	loader Loader

	batches  map[string]*model.Batch
	students map[string]*model.Student
	teachers map[string]*model.Teacher

	dirtyBatches    map[string]bool
	touchedStudents map[string]bool
	touchedTeachers map[string]bool

	deletedBatches  map[string]bool
	deletedStudents map[string]bool
	deletedTeachers map[string]bool
}

// New returns an empty Graph reading through loader.
func New(ctx context.Context, loader Loader) *Graph {
	return &Graph{
		ctx:             ctx,
		loader:          loader,
		batches:         make(map[string]*model.Batch),
		students:        make(map[string]*model.Student),
		teachers:        make(map[string]*model.Teacher),
		dirtyBatches:    make(map[string]bool),
		touchedStudents: make(map[string]bool),
		touchedTeachers: make(map[string]bool),
		deletedBatches:  make(map[string]bool),
		deletedStudents: make(map[string]bool),
		deletedTeachers: make(map[string]bool),
	}
}

// CreateBatch adds a batch. Its teacher and students must exist.
func (g *Graph) CreateBatch(b model.Batch) (model.Batch, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if _, err := g.batch(b.ID); err == nil {
		return b, fmt.Errorf("batch %s: %w", b.ID, model.ErrConflict)
	} else if !errors.Is(err, model.ErrNotFound) {
		return b, err
	}
	b.Students = dedupe(b.Students)
	if b.ScheduleDays == nil {
		b.ScheduleDays = []string{}
	}
	if err := g.checkRefs(b.Teacher, b.Students); err != nil {
		return b, err
	}
	b.Revenue = decimal.Zero
	g.batches[b.ID] = &b
	g.dirtyBatches[b.ID] = true
	g.touchBatch(b)
	return b, nil
}

// UpdateBatch applies patch to a batch. The old and new teacher and every
// old and new student are re-derived.
func (g *Graph) UpdateBatch(id string, patch BatchPatch) (model.Batch, error) {
	b, err := g.batch(id)
	if err != nil {
		return model.Batch{}, err
	}
	g.touchBatch(*b)

	teacher := b.Teacher
	if patch.Teacher != nil {
		teacher = *patch.Teacher
	}
	students := b.Students
	if patch.Students != nil {
		students = dedupe(*patch.Students)
	}
	if err := g.checkRefs(teacher, students); err != nil {
		return *b, err
	}

	b.Teacher = teacher
	b.Students = students
	if patch.BatchName != nil {
		b.BatchName = *patch.BatchName
	}
	if patch.StartDate != nil {
		b.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		b.EndDate = *patch.EndDate
	}
	if patch.ScheduleDays != nil {
		b.ScheduleDays = *patch.ScheduleDays
	}
	if patch.SessionTime != nil {
		b.SessionTime = *patch.SessionTime
	}
	if patch.TargetRevenue != nil {
		b.TargetRevenue = *patch.TargetRevenue
	}
	g.dirtyBatches[id] = true
	g.touchBatch(*b)
	return *b, nil
}

// EnrollStudent adds a student to a batch. Enrolling twice is a no-op.
func (g *Graph) EnrollStudent(batchID, studentID string) (model.Batch, error) {
	b, err := g.batch(batchID)
	if err != nil {
		return model.Batch{}, err
	}
	if b.HasStudent(studentID) {
		return *b, nil
	}
	students := append(slices.Clone(b.Students), studentID)
	return g.UpdateBatch(batchID, BatchPatch{Students: &students})
}

// DeleteBatch removes a batch and re-derives its teacher and students.
func (g *Graph) DeleteBatch(id string) error {
	b, err := g.batch(id)
	if err != nil {
		return err
	}
	g.touchBatch(*b)
	g.deletedBatches[id] = true
	delete(g.dirtyBatches, id)
	return nil
}

// DeleteStudent removes a student and pulls it from every batch.
func (g *Graph) DeleteStudent(id string) error {
	if _, err := g.student(id); err != nil {
		return err
	}
	batches, err := g.batchesWhere(
		func() ([]model.Batch, error) { return g.loader.ListBatchesByStudent(g.ctx, id) },
		func(b *model.Batch) bool { return b.HasStudent(id) },
	)
	if err != nil {
		return err
	}
	for _, b := range batches {
		b.Students = slices.DeleteFunc(slices.Clone(b.Students), func(s string) bool { return s == id })
		g.dirtyBatches[b.ID] = true
		if b.Teacher != "" {
			g.touchedTeachers[b.Teacher] = true
		}
	}
	g.deletedStudents[id] = true
	return nil
}

// DeleteTeacher removes a teacher and unassigns every batch it owned.
func (g *Graph) DeleteTeacher(id string) error {
	if _, err := g.teacher(id); err != nil {
		return err
	}
	batches, err := g.batchesWhere(
		func() ([]model.Batch, error) { return g.loader.ListBatchesByTeacher(g.ctx, id) },
		func(b *model.Batch) bool { return b.Teacher == id },
	)
	if err != nil {
		return err
	}
	for _, b := range batches {
		b.Teacher = ""
		g.dirtyBatches[b.ID] = true
		for _, s := range b.Students {
			g.touchedStudents[s] = true
		}
	}
	g.deletedTeachers[id] = true
	return nil
}

// Changes re-derives every touched student and teacher and returns the full
// write set, sorted by id.
func (g *Graph) Changes() (Changes, error) {
	var ch Changes

	for _, id := range sortedKeys(g.dirtyBatches) {
		if !g.deletedBatches[id] {
			ch.Batches = append(ch.Batches, *g.batches[id])
		}
	}
	ch.DeletedBatches = sortedKeys(g.deletedBatches)
	ch.DeletedStudents = sortedKeys(g.deletedStudents)
	ch.DeletedTeachers = sortedKeys(g.deletedTeachers)

	for _, id := range sortedKeys(g.touchedStudents) {
		if g.deletedStudents[id] {
			continue
		}
		st, err := g.student(id)
		if errors.Is(err, model.ErrNotFound) {
			continue
		}
		if err != nil {
			return ch, err
		}
		if err := g.deriveStudent(st); err != nil {
			return ch, err
		}
		ch.Students = append(ch.Students, *st)
	}

	for _, id := range sortedKeys(g.touchedTeachers) {
		if g.deletedTeachers[id] {
			continue
		}
		t, err := g.teacher(id)
		if errors.Is(err, model.ErrNotFound) {
			continue
		}
		if err != nil {
			return ch, err
		}
		if err := g.deriveTeacher(t); err != nil {
			return ch, err
		}
		ch.Teachers = append(ch.Teachers, *t)
	}
	return ch, nil
}

func (g *Graph) deriveStudent(st *model.Student) error {
	batches, err := g.batchesWhere(
		func() ([]model.Batch, error) { return g.loader.ListBatchesByStudent(g.ctx, st.ID) },
		func(b *model.Batch) bool { return b.HasStudent(st.ID) },
	)
	if err != nil {
		return err
	}
	var batchIDs, teacherIDs []string
	for _, b := range batches {
		batchIDs = append(batchIDs, b.ID)
		if b.Teacher != "" && !g.deletedTeachers[b.Teacher] {
			teacherIDs = append(teacherIDs, b.Teacher)
		}
	}
	st.Batches = keepOrder(st.Batches, dedupe(batchIDs))
	st.Teachers = keepOrder(st.Teachers, dedupe(teacherIDs))
	return nil
}

func (g *Graph) deriveTeacher(t *model.Teacher) error {
	batches, err := g.batchesWhere(
		func() ([]model.Batch, error) { return g.loader.ListBatchesByTeacher(g.ctx, t.ID) },
		func(b *model.Batch) bool { return b.Teacher == t.ID },
	)
	if err != nil {
		return err
	}
	var batchIDs, studentIDs []string
	for _, b := range batches {
		batchIDs = append(batchIDs, b.ID)
		for _, s := range b.Students {
			if !g.deletedStudents[s] {
				studentIDs = append(studentIDs, s)
			}
		}
	}
	t.Batches = keepOrder(t.Batches, dedupe(batchIDs))
	t.Students = keepOrder(t.Students, dedupe(studentIDs))
	t.TotalBatches = len(t.Batches)
	t.TotalStudents = len(t.Students)
	return nil
}

// batchesWhere merges committed batches from load with the graph's pending
// state and returns those matching keep, ordered by id. Returned pointers
// are the graph's working copies.
func (g *Graph) batchesWhere(load func() ([]model.Batch, error), keep func(*model.Batch) bool) ([]*model.Batch, error) {
	loaded, err := load()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []*model.Batch
	for _, lb := range loaded {
		b, err := g.batch(lb.ID)
		if errors.Is(err, model.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		seen[b.ID] = true
		if keep(b) {
			out = append(out, b)
		}
	}
	for id, b := range g.batches {
		if seen[id] || g.deletedBatches[id] {
			continue
		}
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (g *Graph) touchBatch(b model.Batch) {
	if b.Teacher != "" {
		g.touchedTeachers[b.Teacher] = true
	}
	for _, s := range b.Students {
		g.touchedStudents[s] = true
	}
}

func (g *Graph) checkRefs(teacherID string, studentIDs []string) error {
	if teacherID != "" {
		if _, err := g.teacher(teacherID); err != nil {
			return err
		}
	}
	for _, id := range studentIDs {
		if _, err := g.student(id); err != nil {
			return err
		}
	}
	return nil
}

func (g *Graph) batch(id string) (*model.Batch, error) {
	if g.deletedBatches[id] {
		return nil, fmt.Errorf("batch %s: %w", id, model.ErrNotFound)
	}
	if b, ok := g.batches[id]; ok {
		return b, nil
	}
	b, err := g.loader.GetBatch(g.ctx, id)
	if err != nil {
		return nil, err
	}
	g.batches[id] = &b
	return &b, nil
}

func (g *Graph) student(id string) (*model.Student, error) {
	if g.deletedStudents[id] {
		return nil, fmt.Errorf("student %s: %w", id, model.ErrNotFound)
	}
	if st, ok := g.students[id]; ok {
		return st, nil
	}
	st, err := g.loader.GetStudent(g.ctx, id)
	if err != nil {
		return nil, err
	}
	g.students[id] = &st
	return &st, nil
}

func (g *Graph) teacher(id string) (*model.Teacher, error) {
	if g.deletedTeachers[id] {
		return nil, fmt.Errorf("teacher %s: %w", id, model.ErrNotFound)
	}
	if t, ok := g.teachers[id]; ok {
		return t, nil
	}
	t, err := g.loader.GetTeacher(g.ctx, id)
	if err != nil {
		return nil, err
	}
	g.teachers[id] = &t
	return &t, nil
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// keepOrder returns want ordered so that ids already present in current
// keep their relative position and new ids follow in want order.
func keepOrder(current, want []string) []string {
	wanted := make(map[string]bool, len(want))
	for _, id := range want {
		wanted[id] = true
	}
	out := make([]string, 0, len(want))
	placed := make(map[string]bool, len(want))
	for _, id := range current {
		if wanted[id] && !placed[id] {
			out = append(out, id)
			placed[id] = true
		}
	}
	for _, id := range want {
		if !placed[id] {
			out = append(out, id)
			placed[id] = true
		}
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
