package log

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/mwantia/fabric/pkg/container"
)

// LoggerTagProcessor resolves fabric:"logger" and fabric:"logger:<name>"
// struct tags into LoggerService values taken from a service container.
type LoggerTagProcessor struct{}

func NewLoggerTagProcessor() *LoggerTagProcessor {
	return &LoggerTagProcessor{}
}

// GetPriority places the processor ahead of the default inject processor.
func (ltp *LoggerTagProcessor) GetPriority() int {
	return 50
}

// CanProcess reports whether value is a logger tag. Matching is case-insensitive.
func (ltp *LoggerTagProcessor) CanProcess(value string) bool {
	return strings.EqualFold(value, "logger") || strings.HasPrefix(strings.ToLower(value), "logger:")
}

// Process resolves the registered LoggerService and, for "logger:<name>",
// returns the named child logger.
func (ltp *LoggerTagProcessor) Process(ctx context.Context, sc *container.ServiceContainer, field reflect.StructField, value string) (any, error) {
	ok, resolved := sc.ResolveByType(ctx, reflect.TypeOf((*LoggerService)(nil)).Elem())
	if !ok {
		return nil, fmt.Errorf("failed to resolve LoggerService for field '%s': no logger service registered", field.Name)
	}

	base, ok := resolved.(LoggerService)
	if !ok {
		return nil, fmt.Errorf("resolved logger is not a LoggerService for field '%s'", field.Name)
	}

	if _, name, found := strings.Cut(value, ":"); found {
		if name = strings.TrimSpace(name); name != "" {
			return base.Named(name), nil
		}
	}

	return base, nil
}

// Inject walks the exported fields of the struct behind target and fills
// every field carrying a logger tag.
func (ltp *LoggerTagProcessor) Inject(ctx context.Context, sc *container.ServiceContainer, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("logger injection requires a pointer to a struct, got %T", target)
	}

	elem := rv.Elem()
	for i := 0; i < elem.NumField(); i++ {
		field := elem.Type().Field(i)
		tag, ok := field.Tag.Lookup("fabric")
		if !ok || !ltp.CanProcess(tag) {
			continue
		}
		if !field.IsExported() {
			return fmt.Errorf("field '%s' carries a logger tag but is not exported", field.Name)
		}

		value, err := ltp.Process(ctx, sc, field, tag)
		if err != nil {
			return err
		}
		elem.Field(i).Set(reflect.ValueOf(value))
	}

	return nil
}
