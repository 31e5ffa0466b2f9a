package storage

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	grocererrors "github.com/randalmurphal/grocer/internal/errors"
	"github.com/randalmurphal/grocer/internal/model"
)

// Metric names exported by Instrumented.
const (
	MetricOperationsTotal   = "grocer_storage_operations_total"
	MetricOperationDuration = "grocer_storage_operation_duration_seconds"
)

// Instrumented records a counter and a latency histogram for every call
// made through the wrapped Backend. The result label is "ok" or the error
// kind.
type Instrumented struct {
	next     Backend
	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewInstrumented wraps next and registers its collectors with reg.
func NewInstrumented(next Backend, reg prometheus.Registerer) (*Instrumented, error) {
	ops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: MetricOperationsTotal,
		Help: "Storage operations by operation and result.",
	}, []string{"op", "result"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    MetricOperationDuration,
		Help:    "Storage operation latency in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
	}, []string{"op"})

	if err := reg.Register(ops); err != nil {
		return nil, err
	}
	if err := reg.Register(duration); err != nil {
		reg.Unregister(ops)
		return nil, err
	}
	return &Instrumented{next: next, ops: ops, duration: duration}, nil
}

// Unwrap returns the decorated backend.
func (m *Instrumented) Unwrap() Backend {
	return m.next
}

// track starts timing op. The returned func records the outcome in *errp.
func (m *Instrumented) track(op string) func(errp *error) {
	start := time.Now()
	return func(errp *error) {
		m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		result := "ok"
		if *errp != nil {
			result = grocererrors.KindOf(*errp).String()
		}
		m.ops.WithLabelValues(op, result).Inc()
	}
}

func (m *Instrumented) AddItem(ctx context.Context, name string) (err error) {
	defer m.track("add_item")(&err)
	return m.next.AddItem(ctx, name)
}

func (m *Instrumented) SetItemSection(ctx context.Context, item, section string) (err error) {
	defer m.track("set_item_section")(&err)
	return m.next.SetItemSection(ctx, item, section)
}

func (m *Instrumented) AddRecipe(ctx context.Context, recipe string, ingredients model.Ingredients) (err error) {
	defer m.track("add_recipe")(&err)
	return m.next.AddRecipe(ctx, recipe, ingredients)
}

func (m *Instrumented) RecipeIngredients(ctx context.Context, recipe string) (ingredients model.Ingredients, ok bool, err error) {
	defer m.track("recipe_ingredients")(&err)
	return m.next.RecipeIngredients(ctx, recipe)
}

func (m *Instrumented) DeleteRecipe(ctx context.Context, recipe string) (err error) {
	defer m.track("delete_recipe")(&err)
	return m.next.DeleteRecipe(ctx, recipe)
}

func (m *Instrumented) AddListItem(ctx context.Context, name string) (err error) {
	defer m.track("add_list_item")(&err)
	return m.next.AddListItem(ctx, name)
}

func (m *Instrumented) AddListRecipe(ctx context.Context, recipe string) (err error) {
	defer m.track("add_list_recipe")(&err)
	return m.next.AddListRecipe(ctx, recipe)
}

func (m *Instrumented) DeleteListItem(ctx context.Context, name string) (err error) {
	defer m.track("delete_list_item")(&err)
	return m.next.DeleteListItem(ctx, name)
}

func (m *Instrumented) RefreshList(ctx context.Context) (err error) {
	defer m.track("refresh_list")(&err)
	return m.next.RefreshList(ctx)
}

func (m *Instrumented) AddChecklistItem(ctx context.Context, name string) (err error) {
	defer m.track("add_checklist_item")(&err)
	return m.next.AddChecklistItem(ctx, name)
}

func (m *Instrumented) DeleteChecklistItem(ctx context.Context, name string) (err error) {
	defer m.track("delete_checklist_item")(&err)
	return m.next.DeleteChecklistItem(ctx, name)
}

func (m *Instrumented) ClearChecklist(ctx context.Context) (err error) {
	defer m.track("clear_checklist")(&err)
	return m.next.ClearChecklist(ctx)
}

func (m *Instrumented) Items(ctx context.Context) (items model.Items, err error) {
	defer m.track("items")(&err)
	return m.next.Items(ctx)
}

func (m *Instrumented) Recipes(ctx context.Context) (recipes []model.Recipe, err error) {
	defer m.track("recipes")(&err)
	return m.next.Recipes(ctx)
}

func (m *Instrumented) Sections(ctx context.Context) (sections []model.Section, err error) {
	defer m.track("sections")(&err)
	return m.next.Sections(ctx)
}

func (m *Instrumented) Checklist(ctx context.Context) (items model.Items, err error) {
	defer m.track("checklist")(&err)
	return m.next.Checklist(ctx)
}

func (m *Instrumented) ListRecipes(ctx context.Context) (recipes []model.Recipe, err error) {
	defer m.track("list_recipes")(&err)
	return m.next.ListRecipes(ctx)
}

func (m *Instrumented) List(ctx context.Context) (list model.List, err error) {
	defer m.track("list")(&err)
	return m.next.List(ctx)
}

// Close closes the decorated backend. Collectors stay registered.
func (m *Instrumented) Close() error {
	return m.next.Close()
}

// Ensure Instrumented implements Backend
var _ Backend = (*Instrumented)(nil)
