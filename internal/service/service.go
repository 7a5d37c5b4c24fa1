// Package service реализует выборку, проверку и изменение позиций склада.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/RoGogDBD/inventory/internal/models"
	"github.com/RoGogDBD/inventory/internal/repository"
	"github.com/RoGogDBD/inventory/internal/telemetry"
)

// ErrNotFound возвращается, если позиции с указанным id нет.
var ErrNotFound = errors.New("item not found")

// ValidationError содержит все нарушения правил в порядке проверки полей.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// EventPublisher получает события после успешных изменений.
// Publish не должен блокировать вызывающего.
type EventPublisher interface {
	Publish(ctx context.Context, event models.ItemEvent)
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, models.ItemEvent) {}

// Service реализует движок выборки и изменения позиций поверх хранилища.
type Service struct {
	store     repository.ItemStore
	searcher  repository.ItemSearcher
	log       *zap.Logger
	publisher EventPublisher
	now       func() time.Time
	tracer    trace.Tracer
	metrics   *telemetry.Metrics
}

// Option настраивает Service.
type Option func(*Service)

// WithLogger задает логгер.
func WithLogger(log *zap.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithPublisher задает получателя событий.
func WithPublisher(p EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics задает счетчики операций.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTracer задает трассировщик.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// New создает сервис. Если хранилище умеет искать само, выборка выполняется в нем,
// иначе фильтрация и сортировка идут в памяти по FindAll.
func New(store repository.ItemStore, opts ...Option) *Service {
	s := &Service{
		store:     store,
		log:       zap.NewNop(),
		publisher: noopPublisher{},
		now:       time.Now,
		tracer:    telemetry.Tracer(),
	}
	if repository.SupportsSearch(store) {
		s.searcher = store.(repository.ItemSearcher)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping проверяет доступность хранилища.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// operation сопровождает один вызов сервиса: спан, метрика и лог ошибки хранилища.
type operation struct {
	s     *Service
	name  string
	span  trace.Span
	start time.Time
}

func (s *Service) begin(ctx context.Context, name string) (context.Context, *operation) {
	ctx, span := s.tracer.Start(ctx, "service."+name)
	return ctx, &operation{s: s, name: name, span: span, start: time.Now()}
}

func (op *operation) end(ctx context.Context, outcome string) {
	op.s.metrics.Record(ctx, op.name, outcome, time.Since(op.start))
	op.span.End()
}

// storeFailure фиксирует сбой хранилища и возвращает обернутую ошибку.
func (op *operation) storeFailure(ctx context.Context, err error, fields ...zap.Field) error {
	op.span.RecordError(err)
	op.span.SetStatus(codes.Error, err.Error())
	op.s.log.Error("store failure",
		append([]zap.Field{zap.String("op", op.name), zap.Error(err)}, fields...)...,
	)
	op.end(ctx, telemetry.OutcomeStoreError)
	return err
}
