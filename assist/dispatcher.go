package assist

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/qiwen/shopguide/ai"
	"github.com/qiwen/shopguide/metrics"
	"github.com/qiwen/shopguide/retrieval"
	"github.com/qiwen/shopguide/store"
	"github.com/qiwen/shopguide/weather"
)

// areaCodeLen is the geographic area code length expected by the weather
// provider; shop city codes are truncated to it.
const areaCodeLen = 6

// Request is one inbound assist request. Mode arrives as the raw wire tag
// so that unsupported values can be answered with the canned sentence.
type Request struct {
	Mode    string
	Code    string
	Message string
}

// RecordStore is the read-only record store surface the pipeline needs.
// *store.Store satisfies it.
type RecordStore interface {
	GetMemberByCode(ctx context.Context, code string) (*store.Member, error)
	GetShopCityByCode(ctx context.Context, code string) (string, error)
}

// Dependencies bundles the external collaborators of the pipeline. It is
// constructed once at startup and passed explicitly, so tests can swap in
// fakes.
type Dependencies struct {
	Store      RecordStore
	Embedding  ai.EmbeddingService
	Generation ai.GenerationService
	Weather    weather.Service
	Searcher   retrieval.Searcher

	TopK  int    // nearest neighbors per match query (default: 10)
	Brand string // brand line for match prompts

	// Now returns the service's current date. Defaults to time.Now.
	Now func() time.Time

	// Metrics may be nil.
	Metrics *metrics.Collector
}

// handler runs the resolve → enrich → compose → stream sequence of one
// mode. An error return is an infrastructure failure; every recoverable
// outcome is a stream.
type handler interface {
	handle(ctx context.Context, code, message string) (<-chan ai.Chunk, error)
}

// Dispatcher validates the mode tag and runs the matching handler.
type Dispatcher struct {
	deps     Dependencies
	handlers map[Mode]handler
}

// NewDispatcher creates a Dispatcher with one handler per supported mode.
func NewDispatcher(deps Dependencies) *Dispatcher {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.TopK <= 0 {
		deps.TopK = 10
	}

	d := &Dispatcher{deps: deps}
	d.handlers = map[Mode]handler{
		ModeBirthday: &birthdayHandler{deps: &d.deps},
		ModeWeather:  &weatherHandler{deps: &d.deps},
		ModeHoliday:  &holidayHandler{deps: &d.deps},
		ModeMatch:    &matchHandler{deps: &d.deps},
	}
	return d
}

// Dispatch runs one request through its mode's pipeline and returns the
// response stream. The returned error is an infrastructure failure only;
// not-found, unsupported-mode and generation failures are all answered in
// the stream itself.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (<-chan ai.Chunk, error) {
	mode, ok := ParseMode(req.Mode)
	if !ok {
		slog.Info("unsupported mode requested", "mode", req.Mode)
		d.deps.Metrics.RecordRequest("unknown", metrics.OutcomeUnsupportedMode)
		return ai.CannedStream(UnsupportedModeText), nil
	}

	code := strings.TrimSpace(req.Code)
	stream, err := d.handlers[mode].handle(ctx, code, req.Message)
	if err != nil {
		d.deps.Metrics.RecordRequest(mode.Name(), metrics.OutcomeError)
		return nil, fmt.Errorf("dispatch mode %s: %w", mode.Name(), err)
	}
	return stream, nil
}

// currentDate renders the service clock in prompt form.
func currentDate(deps *Dependencies) string {
	return deps.Now().Format(dateLayout)
}

type birthdayHandler struct {
	deps *Dependencies
}

func (h *birthdayHandler) handle(ctx context.Context, code, message string) (<-chan ai.Chunk, error) {
	member, err := h.deps.Store.GetMemberByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if member == nil {
		h.deps.Metrics.RecordRequest(ModeBirthday.Name(), metrics.OutcomeNotFound)
		return ai.CannedStream(NotFoundText), nil
	}

	prompt, err := composePrompt(ModeBirthday, promptData{
		MemberInfo: fmt.Sprintf("姓名：%s，性别：%s，生日：%s", member.Name, member.Sex, member.Birthday),
		Message:    message,
		Date:       currentDate(h.deps),
	})
	if err != nil {
		return nil, err
	}

	h.deps.Metrics.RecordRequest(ModeBirthday.Name(), metrics.OutcomeGenerated)
	return h.deps.Generation.Generate(ctx, prompt, ai.ProfileDirect), nil
}

type weatherHandler struct {
	deps *Dependencies
}

func (h *weatherHandler) handle(ctx context.Context, code, message string) (<-chan ai.Chunk, error) {
	city, err := h.deps.Store.GetShopCityByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if city == "" {
		h.deps.Metrics.RecordRequest(ModeWeather.Name(), metrics.OutcomeNotFound)
		return ai.CannedStream(NotFoundText), nil
	}

	summary := h.deps.Weather.Summary(ctx, truncateAreaCode(city))
	prompt, err := composePrompt(ModeWeather, promptData{
		Weather: summary,
		Message: message,
		Date:    currentDate(h.deps),
	})
	if err != nil {
		return nil, err
	}

	h.deps.Metrics.RecordRequest(ModeWeather.Name(), metrics.OutcomeGenerated)
	return h.deps.Generation.Generate(ctx, prompt, ai.ProfileDirect), nil
}

type holidayHandler struct {
	deps *Dependencies
}

func (h *holidayHandler) handle(ctx context.Context, code, message string) (<-chan ai.Chunk, error) {
	member, err := h.deps.Store.GetMemberByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if member == nil {
		h.deps.Metrics.RecordRequest(ModeHoliday.Name(), metrics.OutcomeNotFound)
		return ai.CannedStream(NotFoundText), nil
	}

	age, err := DeriveAge(member.Birthday, h.deps.Now())
	if err != nil {
		return nil, err
	}

	prompt, err := composePrompt(ModeHoliday, promptData{
		MemberInfo: fmt.Sprintf("姓名：%s，性别：%s，年龄：%d", member.Name, member.Sex, age),
		Message:    message,
		Date:       currentDate(h.deps),
	})
	if err != nil {
		return nil, err
	}

	h.deps.Metrics.RecordRequest(ModeHoliday.Name(), metrics.OutcomeGenerated)
	return h.deps.Generation.Generate(ctx, prompt, ai.ProfileDirect), nil
}

type matchHandler struct {
	deps *Dependencies
}

func (h *matchHandler) handle(ctx context.Context, code, message string) (<-chan ai.Chunk, error) {
	member, err := h.deps.Store.GetMemberByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if member == nil {
		h.deps.Metrics.RecordRequest(ModeMatch.Name(), metrics.OutcomeNotFound)
		return ai.CannedStream(NotFoundText), nil
	}

	age, err := DeriveAge(member.Birthday, h.deps.Now())
	if err != nil {
		return nil, err
	}

	memberInfo := fmt.Sprintf("%s,%d岁,%s", member.Sex, age, message)
	vector, err := h.deps.Embedding.Embed(ctx, memberInfo)
	if err != nil {
		return nil, fmt.Errorf("embed match query: %w", err)
	}

	matches, err := h.deps.Searcher.Search(ctx, vector, h.deps.TopK)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	prompt, err := composePrompt(ModeMatch, promptData{
		Name:       member.Name,
		MemberInfo: memberInfo,
		Matches:    formatMatches(matches),
		Date:       currentDate(h.deps),
		Brand:      h.deps.Brand,
	})
	if err != nil {
		return nil, err
	}

	h.deps.Metrics.RecordRequest(ModeMatch.Name(), metrics.OutcomeGenerated)
	return h.deps.Generation.Generate(ctx, prompt, ai.ProfileReasoning), nil
}

// truncateAreaCode cuts a shop city code down to the weather provider's
// area code length.
func truncateAreaCode(city string) string {
	runes := []rune(city)
	if len(runes) <= areaCodeLen {
		return city
	}
	return string(runes[:areaCodeLen])
}
