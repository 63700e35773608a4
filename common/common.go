package common

import (
	"context"
	"fmt"
	"time"

	"github.com/jrsteele09/go-notes-server/auth"
	"github.com/jrsteele09/go-notes-server/fruits"
	apperrors "github.com/jrsteele09/go-notes-server/internal/errors"
	"github.com/jrsteele09/go-notes-server/locks"
	"github.com/jrsteele09/go-notes-server/pagination"
)

const (
	echoLimit   = 10
	echoTimeout = 60 * time.Second
)

type CreateFruitInput struct {
	Name string      `json:"name"`
	Type fruits.Type `json:"type"`
}

// Service serves the demo endpoints: echo, fruits and the server clock.
type Service struct {
	limiter *locks.Limiter
	catalog *fruits.Catalog
	nowFunc func() time.Time
}

func NewService(limiter *locks.Limiter, catalog *fruits.Catalog, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{limiter: limiter, catalog: catalog, nowFunc: now}
}

// Echo returns message, at most 10 times a minute per address.
func (s *Service) Echo(ctx context.Context, inv *auth.Invocation, message string) (string, error) {
	var echoed string
	err := auth.Run(ctx, inv, []auth.Step{
		auth.Throttle(s.limiter, locks.ThrottleSpec{Name: "Echo", Limit: echoLimit, Timeout: echoTimeout}),
	}, func() error {
		if message == "" {
			return apperrors.NewValidationError("message", "This field is required.")
		}
		echoed = message
		return nil
	})
	return echoed, err
}

func (s *Service) Localtime() time.Time {
	return s.nowFunc()
}

// Fruits pages the fixture in catalog order, filtered by search.
func (s *Service) Fruits(engine *pagination.Engine, search string, args pagination.Args) (*pagination.Connection[*fruits.Fruit], error) {
	return pagination.FromSlice(engine, s.catalog.Search(search), "fruits", "id", args)
}

func (s *Service) Fruit(id string) *fruits.Fruit {
	return s.catalog.Get(id)
}

// CreateFruit validates and returns a new fruit. The fixture itself never changes.
func (s *Service) CreateFruit(in CreateFruitInput) (*fruits.Fruit, error) {
	v := &apperrors.ValidationError{}
	if in.Name == "" {
		v.Add("name", "This field is required.")
	}
	if !in.Type.Valid() {
		v.Add("type", fmt.Sprintf("\"%s\" is not a valid choice.", in.Type))
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	return fruits.New(in.Name, in.Type, s.nowFunc()), nil
}
