package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/edify-labs/edify/internal/ai"
	"github.com/edify-labs/edify/internal/auth"
	"github.com/edify-labs/edify/internal/catalog"
	"github.com/edify-labs/edify/internal/store"
	"github.com/edify-labs/edify/internal/tools"
	"github.com/edify-labs/edify/internal/tools/clarify"
	"github.com/edify-labs/edify/internal/tools/lessonplan"
	"github.com/edify-labs/edify/internal/tools/peel"
	"github.com/edify-labs/edify/internal/tools/prompts"
	"github.com/edify-labs/edify/internal/tools/rubric"
)

// FormChoices are the option lists the tool forms offer.
type FormChoices struct {
	YearGroups             []string
	RubricYears            []string
	DifferentiationOptions []lessonplan.Option
	SENOptions             []lessonplan.Option
	AssignmentTypes        []rubric.Choice
	KeyStages              []rubric.Choice
	AssessmentTypes        []rubric.Choice
	Complexities           []string
	Tones                  []string
	Audiences              []string
	FocusAreas             []string
	Levels                 []string
}

var choices = func() FormChoices {
	c := FormChoices{
		DifferentiationOptions: lessonplan.DifferentiationOptions,
		SENOptions:             lessonplan.SENOptions,
		AssignmentTypes:        rubric.AssignmentTypes,
		KeyStages:              rubric.KeyStages,
		AssessmentTypes:        rubric.AssessmentTypes,
		Complexities:           peel.Complexities,
		Tones:                  peel.Tones,
		Audiences:              peel.Audiences,
		FocusAreas:             prompts.FocusAreas,
		Levels:                 clarify.Levels,
	}
	for y := 7; y <= 13; y++ {
		c.YearGroups = append(c.YearGroups, "Year "+strconv.Itoa(y))
		c.RubricYears = append(c.RubricYears, strconv.Itoa(y))
	}
	return c
}()

// ToolPage is the template data for a tool form.
type ToolPage struct {
	BasePage
	Tool      *store.Tool
	Available bool
	Values    url.Values
	Errors    map[string]string
	Error     string // generation failure shown above the form
	Choices   FormChoices
	Fact      string
}

// ResultPage is the template data for a finished generation.
type ResultPage struct {
	BasePage
	Tool         *store.Tool
	GenerationID string
	Result       ResultView
}

// ToolsHandler serves the tool forms and runs generations from them.
type ToolsHandler struct {
	runner  *tools.Runner
	tools   *store.ToolStore
	catalog *catalog.Catalog
	log     *zap.Logger
}

// NewToolsHandler creates a new ToolsHandler.
func NewToolsHandler(runner *tools.Runner, ts *store.ToolStore, c *catalog.Catalog, log *zap.Logger) *ToolsHandler {
	return &ToolsHandler{runner: runner, tools: ts, catalog: c, log: log.Named("web")}
}

// defaultValues pre-fills fields that have a sensible starting value.
func defaultValues(slug string) url.Values {
	v := url.Values{}
	switch slug {
	case lessonplan.Slug:
		v.Set("duration", "60")
	case peel.Slug:
		v.Set("minWordCount", "150")
		v.Set("maxWordCount", "300")
	case rubric.Slug:
		v.Set("inputMethod", "text")
	case clarify.Slug:
		v.Set("mode", clarify.ModeClarify)
	}
	return v
}

func (h *ToolsHandler) page(r *http.Request, user *store.User, tool *store.Tool, values url.Values) ToolPage {
	return ToolPage{
		BasePage:  newBasePage(r, user),
		Tool:      tool,
		Available: tool.Implemented && h.runner.Registry().Has(tool.Slug),
		Values:    values,
		Errors:    map[string]string{},
		Choices:   choices,
		Fact:      h.catalog.RandomFact(),
	}
}

// loadTool resolves the {slug} route parameter, writing a 404 when the tool
// is not in the catalog.
func (h *ToolsHandler) loadTool(w http.ResponseWriter, r *http.Request) (*store.Tool, bool) {
	tool, err := h.tools.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return nil, false
	}
	if err != nil {
		http.Error(w, "could not load tool", http.StatusInternalServerError)
		return nil, false
	}
	return tool, true
}

// Form renders GET /dashboard/tools/{slug}.
func (h *ToolsHandler) Form(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	tool, ok := h.loadTool(w, r)
	if !ok {
		return
	}
	render(w, "tools/form.html", h.page(r, user, tool, defaultValues(tool.Slug)))
}

// Generate handles POST /dashboard/tools/{slug}. Input errors and model
// failures redisplay the form with the submitted values; success renders
// the result.
func (h *ToolsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	tool, ok := h.loadTool(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	data := h.page(r, user, tool, r.PostForm)
	if !data.Available {
		renderStatus(w, http.StatusNotImplemented, "tools/form.html", data)
		return
	}

	run, err := h.runner.RunForm(r.Context(), user, tool.Slug, r.PostForm)
	if err != nil {
		var verr *tools.ValidationError
		if errors.As(err, &verr) {
			for _, f := range verr.Fields {
				if _, seen := data.Errors[f.Field]; !seen {
					data.Errors[f.Field] = f.Message
				}
			}
			renderStatus(w, http.StatusUnprocessableEntity, "tools/form.html", data)
			return
		}

		aerr := ai.AsError(err)
		h.log.Warn("generation failed",
			zap.String("tool", tool.Slug), zap.String("user_id", user.ID),
			zap.String("code", aerr.Code), zap.Error(err))
		data.Error = aerr.Message
		renderStatus(w, aerr.Status, "tools/form.html", data)
		return
	}

	render(w, "tools/result.html", ResultPage{
		BasePage:     newBasePage(r, user),
		Tool:         tool,
		GenerationID: run.ID,
		Result:       newResultView(tool.Slug, run.Output.Markdown),
	})
}
