// Package engine runs the per-ticket translation pipeline: fetch, plan,
// translate in one batch, assemble bilingual field values, and optionally
// write them back. Fields that were already translated are left untouched,
// and a failure in one field never discards the others.
package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/Hyunsang-coder/jira-translator/internal/bilingual"
	"github.com/Hyunsang-coder/jira-translator/internal/glossary"
	"github.com/Hyunsang-coder/jira-translator/internal/langdetect"
	"github.com/Hyunsang-coder/jira-translator/internal/markup"
	"github.com/Hyunsang-coder/jira-translator/internal/section"
	"github.com/Hyunsang-coder/jira-translator/internal/translator"
)

// Project maps a Jira project to its glossary and steps custom field.
type Project struct {
	GlossaryFile string
	GlossaryName string
	StepsField   string
}

var projects = map[string]Project{
	"PUBG":   {GlossaryFile: "pubg_glossary.json", GlossaryName: "PUBG", StepsField: "customfield_10237"},
	"P2":     {GlossaryFile: "pbb_glossary.json", GlossaryName: "PBB(Project Black Budget)", StepsField: "customfield_10399"},
	"PAYDAY": {GlossaryFile: "heist_glossary.json", GlossaryName: "HeistRoyale", StepsField: "customfield_10237"},
}

var defaultProject = Project{
	GlossaryFile: "pbb_glossary.json",
	GlossaryName: "PBB(Project Black Budget)",
	StepsField:   "customfield_10399",
}

// ProjectFor resolves the project settings for an issue key. Unknown
// projects fall back to the default profile.
func ProjectFor(issueKey string) (string, Project) {
	key, _, _ := strings.Cut(issueKey, "-")
	key = strings.ToUpper(strings.TrimSpace(key))
	if p, ok := projects[key]; ok {
		return key, p
	}
	return key, defaultProject
}

// FieldStatus classifies the outcome for one field.
type FieldStatus string

const (
	FieldTranslated FieldStatus = "translated"
	FieldSkipped    FieldStatus = "skipped"
	FieldFailed     FieldStatus = "failed"
)

// FieldResult is the outcome for one field of the ticket.
type FieldResult struct {
	Field      string
	Original   string
	Translated string
	Status     FieldStatus
	Warnings   []string
	Err        error
}

// Result is the outcome of one pipeline run.
type Result struct {
	RunID      string
	IssueKey   string
	ProjectKey string
	SourceLang langdetect.Lang
	TargetLang langdetect.Lang
	Fields     []*FieldResult
	Payload    map[string]string
	Updated    bool
}

// Field returns the result for a field id, or nil.
func (r *Result) Field(name string) *FieldResult {
	for _, f := range r.Fields {
		if f.Field == name {
			return f
		}
	}
	return nil
}

// IssueClient is the slice of the Jira client the engine uses.
type IssueClient interface {
	FetchIssueFields(ctx context.Context, issueKey string, fields []string) (map[string]string, error)
	UpdateIssueFields(ctx context.Context, issueKey string, payload map[string]string) error
	DetectStepsField(ctx context.Context, projectKey string) string
}

// LanguageChecker reports whether a translated payload is in the expected
// target language.
type LanguageChecker interface {
	IsValid(translatedText, targetLang string) (bool, error)
}

// Options control one run.
type Options struct {
	// Fields overrides the per-project field list.
	Fields []string
	// TargetLang forces the output language ("ko" or "en"); empty means
	// auto-detect from the ticket.
	TargetLang string
	// GlossaryPath overrides the project glossary file.
	GlossaryPath string
	// PerformUpdate writes the payload back to Jira.
	PerformUpdate bool
}

// Engine wires the pipeline collaborators together.
type Engine struct {
	jira        IssueClient
	batch       *translator.Batch
	classifier  glossary.Classifier
	checker     LanguageChecker
	glossaryDir string
}

// New creates an engine. classifier and checker may be nil: without a
// classifier the glossary keeps all string-matched candidates, and without
// a checker the output language is not validated.
func New(jira IssueClient, batch *translator.Batch, classifier glossary.Classifier, checker LanguageChecker, glossaryDir string) *Engine {
	return &Engine{
		jira:        jira,
		batch:       batch,
		classifier:  classifier,
		checker:     checker,
		glossaryDir: glossaryDir,
	}
}

// fieldPlan groups the chunks of one field together with what assembly
// needs afterwards.
type fieldPlan struct {
	result *FieldResult
	chunks []*planChunk
	kind   fieldKind
}

type fieldKind int

const (
	kindSummary fieldKind = iota
	kindDescription
	kindSteps
)

// planChunk pairs a translation chunk with its extracted markup so
// placeholders can be restored and checked after translation.
type planChunk struct {
	chunk  *translator.Chunk
	blocks []markup.Block
}

// Run executes the pipeline for one issue.
func (e *Engine) Run(ctx context.Context, issueKey string, opts Options) (*Result, error) {
	projectKey, project := ProjectFor(issueKey)

	stepsField := e.jira.DetectStepsField(ctx, projectKey)
	if stepsField == "" {
		stepsField = project.StepsField
	}

	fields := opts.Fields
	if len(fields) == 0 {
		fields = []string{"summary", "description", stepsField}
	}

	fetched, err := e.jira.FetchIssueFields(ctx, issueKey, fields)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:      uuid.NewString(),
		IssueKey:   issueKey,
		ProjectKey: projectKey,
		Payload:    make(map[string]string),
	}
	if len(fetched) == 0 {
		return result, nil
	}

	result.SourceLang, result.TargetLang = e.resolveDirection(opts.TargetLang, fetched)

	plans := e.planFields(fields, stepsField, fetched, result)

	var chunks []*translator.Chunk
	var texts []string
	for _, plan := range plans {
		for _, pc := range plan.chunks {
			chunks = append(chunks, pc.chunk)
			if !pc.chunk.Skip {
				texts = append(texts, pc.chunk.SourceText)
			}
		}
	}

	if len(chunks) > 0 {
		instruction := e.glossaryInstruction(ctx, project, opts.GlossaryPath, texts, result)

		promptOpts := translator.PromptOptions{
			GlossaryInstruction: instruction,
			SourceLang:          string(result.SourceLang),
			TargetLang:          string(result.TargetLang),
		}
		if _, err := e.batch.Translate(ctx, chunks, promptOpts); err != nil {
			return result, fmt.Errorf("batch translation of %s failed: %w", issueKey, err)
		}
	}

	for _, plan := range plans {
		e.assemble(plan, result)
	}

	if opts.PerformUpdate && len(result.Payload) > 0 {
		if err := e.jira.UpdateIssueFields(ctx, issueKey, result.Payload); err != nil {
			return result, err
		}
		result.Updated = true
	}

	return result, nil
}

// resolveDirection picks the translation direction: a forced target wins,
// else the summary decides, else the combined text. An undetectable ticket
// defaults to English→Korean.
func (e *Engine) resolveDirection(forcedTarget string, fetched map[string]string) (source, target langdetect.Lang) {
	switch strings.ToLower(strings.TrimSpace(forcedTarget)) {
	case "en", "english":
		return langdetect.Korean, langdetect.English
	case "ko", "korean":
		return langdetect.English, langdetect.Korean
	}

	detected := langdetect.Detect(fetched["summary"])
	if detected == langdetect.Unknown {
		var combined []string
		for _, value := range fetched {
			combined = append(combined, value)
		}
		detected = langdetect.Detect(strings.Join(combined, "\n"))
	}

	if detected == langdetect.Korean {
		return langdetect.Korean, langdetect.English
	}
	return langdetect.English, langdetect.Korean
}

// planFields builds the chunk plan for every fetched field, applying the
// per-field idempotence guards so an already bilingual field is never
// translated again.
func (e *Engine) planFields(fields []string, stepsField string, fetched map[string]string, result *Result) []*fieldPlan {
	var plans []*fieldPlan

	for _, field := range fields {
		value, ok := fetched[field]
		if !ok || value == "" {
			continue
		}

		fr := &FieldResult{Field: field, Original: value}
		result.Fields = append(result.Fields, fr)

		switch {
		case field == "summary":
			if bilingual.IsBilingualSummary(value) {
				fr.Status = FieldSkipped
				continue
			}
			_, core := bilingual.SplitBracketPrefix(value)
			if strings.TrimSpace(core) == "" {
				fr.Status = FieldSkipped
				continue
			}
			plans = append(plans, e.planField(fr, kindSummary, []sectionInput{{content: core}}, "summary"))

		case field == "description":
			if bilingual.IsAlreadyTranslated(value) {
				fr.Status = FieldSkipped
				continue
			}
			sections := section.Split(value)
			var inputs []sectionInput
			if len(sections) > 0 {
				for _, s := range sections {
					inputs = append(inputs, sectionInput{
						header:  s.Header,
						content: s.Content,
						skip:    !s.NeedsTranslation(),
					})
				}
			} else {
				inputs = []sectionInput{{content: value}}
			}
			plans = append(plans, e.planField(fr, kindDescription, inputs, "description"))

		case field == stepsField || strings.HasPrefix(field, "customfield_"):
			if bilingual.IsStepsBilingual(value) {
				fr.Status = FieldSkipped
				continue
			}
			plans = append(plans, e.planField(fr, kindSteps, []sectionInput{{content: value}}, field))

		default:
			plans = append(plans, e.planField(fr, kindSteps, []sectionInput{{content: value}}, field))
		}
	}

	return plans
}

type sectionInput struct {
	header  string
	content string
	skip    bool
}

// planField turns the sections of one field into chunks with extracted
// markup. Chunk ids are stable: "summary", "description__section_N" (or
// "description__full"), and the raw custom field id for steps.
func (e *Engine) planField(fr *FieldResult, kind fieldKind, inputs []sectionInput, baseID string) *fieldPlan {
	plan := &fieldPlan{result: fr, kind: kind}

	for i, input := range inputs {
		if strings.TrimSpace(input.content) == "" {
			continue
		}

		id := baseID
		if kind == kindDescription {
			if input.header == "" && len(inputs) == 1 {
				id = baseID + "__full"
			} else {
				id = fmt.Sprintf("%s__section_%d", baseID, i)
			}
		}

		blocks, clean := markup.Extract(input.content)
		plan.chunks = append(plan.chunks, &planChunk{
			chunk: &translator.Chunk{
				ID:         id,
				Field:      fieldHint(fr.Field),
				Header:     input.header,
				SourceText: clean,
				Skip:       input.skip,
			},
			blocks: blocks,
		})
	}

	return plan
}

func fieldHint(field string) string {
	switch {
	case field == "summary", field == "description":
		return field
	case strings.HasPrefix(field, "customfield_"):
		return "steps"
	default:
		return "other"
	}
}

// glossaryInstruction loads the project glossary and runs the two-stage
// term selection. A malformed glossary degrades to no instruction, noted as
// a warning on every field.
func (e *Engine) glossaryInstruction(ctx context.Context, project Project, override string, texts []string, result *Result) string {
	path := override
	if path == "" {
		path = filepath.Join(e.glossaryDir, project.GlossaryFile)
	}

	table, err := glossary.Load(path, project.GlossaryName)
	if err != nil {
		for _, fr := range result.Fields {
			fr.Warnings = append(fr.Warnings, fmt.Sprintf("glossary unavailable: %v", err))
		}
		return ""
	}

	candidates := table.SelectCandidates(texts)
	if e.classifier != nil {
		candidates = glossary.Refine(ctx, e.classifier, candidates, texts)
	}
	return glossary.BuildInstruction(table.Name, candidates)
}

// assemble restores markup, verifies placeholder parity, and builds the
// bilingual payload value for one field.
func (e *Engine) assemble(plan *fieldPlan, result *Result) {
	fr := plan.result
	if len(plan.chunks) == 0 {
		if fr.Status == "" {
			fr.Status = FieldSkipped
		}
		return
	}

	translatedAny := false
	missingAll := true
	for _, pc := range plan.chunks {
		if pc.chunk.Skip {
			missingAll = false
			continue
		}
		switch pc.chunk.Status {
		case translator.StatusTranslated, translator.StatusFallbackTranslated:
			translatedAny = true
			missingAll = false
			dropped := markup.Missing(pc.chunk.Translated, pc.blocks)
			pc.chunk.Translated = markup.Restore(pc.chunk.Translated, pc.blocks)
			if len(dropped) > 0 {
				fr.Warnings = append(fr.Warnings,
					fmt.Sprintf("%d attachment placeholder(s) dropped by the model in %s", len(dropped), pc.chunk.ID))
			}
		case translator.StatusMissing:
			fr.Warnings = append(fr.Warnings, fmt.Sprintf("no translation returned for %s", pc.chunk.ID))
		}
	}

	if !translatedAny {
		if missingAll {
			fr.Status = FieldFailed
			fr.Err = fmt.Errorf("no translation produced for field %s", fr.Field)
		} else {
			fr.Status = FieldSkipped
		}
		return
	}

	switch plan.kind {
	case kindSummary:
		translated := plan.chunks[0].chunk.Translated
		fr.Translated = translated
		result.Payload[fr.Field] = bilingual.FormatSummary(fr.Original, translated)

	case kindDescription:
		var parts []string
		var translatedParts []string
		for _, pc := range plan.chunks {
			block := bilingual.FormatBlock(restoreSource(pc), pc.chunk.Translated, pc.chunk.Header)
			if block != "" {
				parts = append(parts, block)
			}
			if pc.chunk.Translated != "" {
				translatedParts = append(translatedParts, pc.chunk.Translated)
			}
		}
		fr.Translated = strings.Join(translatedParts, "\n\n")
		if value := strings.TrimSpace(strings.Join(parts, "\n\n")); value != "" {
			result.Payload[fr.Field] = value
		}

	case kindSteps:
		translated := plan.chunks[0].chunk.Translated
		fr.Translated = translated
		result.Payload[fr.Field] = bilingual.FormatSteps(fr.Original, translated)
	}

	fr.Status = FieldTranslated
	e.checkLanguage(fr, result.TargetLang)
}

// restoreSource rebuilds the original section text from the cleaned chunk.
func restoreSource(pc *planChunk) string {
	return markup.Restore(pc.chunk.SourceText, pc.blocks)
}

// checkLanguage validates the translated payload language; a mismatch is a
// warning, not an error.
func (e *Engine) checkLanguage(fr *FieldResult, target langdetect.Lang) {
	if e.checker == nil || fr.Translated == "" {
		return
	}
	if ok, err := e.checker.IsValid(fr.Translated, string(target)); !ok && err != nil {
		fr.Warnings = append(fr.Warnings, fmt.Sprintf("output language check: %v", err))
	}
}
