package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/rhobs/simple-mcp/pkg/runner"
)

const (
	CalculatorName   = "calculator"
	TextAnalyzerName = "text_analyzer"

	CalculatorScript   = "calculator.py"
	TextAnalyzerScript = "text_analyzer.py"

	AnalysisBasic    = "basic"
	AnalysisDetailed = "detailed"

	// NoResult stands in for a process that printed nothing.
	NoResult = "No result"
)

// Output is what a tool handler produces: the raw result taken from the
// process output and the formatted text returned to callers.
type Output struct {
	Result string
	Text   string
}

// Handler executes a tool against its arguments using r.
type Handler func(ctx context.Context, r runner.Runner, args map[string]any) (Output, error)

// Tool couples a definition with its handler.
type Tool struct {
	ToolDef
	Handler Handler
}

// Calculator evaluates an expression with calculator.py. The expression is
// passed as is; parsing and evaluation belong to the script.
func Calculator() Tool {
	return Tool{
		ToolDef: ToolDef{
			Name:        CalculatorName,
			Description: "Perform mathematical calculations using Python",
			Title:       "Calculator",
			Params: []ParamDef{
				{
					Name:        "expression",
					Type:        ParamTypeString,
					Description: "Mathematical expression to evaluate",
					Required:    true,
				},
			},
			ReadOnly:   true,
			Idempotent: true,
		},
		Handler: runCalculator,
	}
}

func runCalculator(ctx context.Context, r runner.Runner, args map[string]any) (Output, error) {
	expression, err := RequireString(args, "expression")
	if err != nil {
		return Output{}, err
	}

	lines, err := r.Run(ctx, CalculatorScript, expression)
	if err != nil {
		return Output{}, err
	}

	result := NoResult
	if len(lines) > 0 {
		result = lines[0]
	}

	return Output{
		Result: result,
		Text:   fmt.Sprintf("Calculation: %s = %s", expression, result),
	}, nil
}

// TextAnalyzer reports text statistics with text_analyzer.py.
func TextAnalyzer() Tool {
	def := ToolDef{
		Name:        TextAnalyzerName,
		Description: "Analyze text using Python",
		Title:       "Text Analyzer",
		Params: []ParamDef{
			{
				Name:        "text",
				Type:        ParamTypeString,
				Description: "Text to analyze",
				Required:    true,
			},
			{
				Name:        "analysis_type",
				Type:        ParamTypeString,
				Description: "Type of analysis to perform",
				Enum:        []string{AnalysisBasic, AnalysisDetailed},
				Default:     AnalysisBasic,
			},
		},
		ReadOnly:   true,
		Idempotent: true,
	}
	return Tool{ToolDef: def, Handler: textAnalyzerHandler(def)}
}

func textAnalyzerHandler(def ToolDef) Handler {
	analysis, _ := def.Param("analysis_type")
	return func(ctx context.Context, r runner.Runner, args map[string]any) (Output, error) {
		text, err := RequireString(args, "text")
		if err != nil {
			return Output{}, err
		}
		analysisType, err := OptionalEnum(args, analysis.Name, analysis.Default, analysis.Enum)
		if err != nil {
			return Output{}, err
		}
		return runTextAnalyzer(ctx, r, text, analysisType)
	}
}

func runTextAnalyzer(ctx context.Context, r runner.Runner, text, analysisType string) (Output, error) {
	lines, err := r.Run(ctx, TextAnalyzerScript, text, analysisType)
	if err != nil {
		return Output{}, err
	}

	result := NoResult
	if len(lines) > 0 {
		result = strings.Join(lines, "\n")
	}

	return Output{
		Result: result,
		Text:   "Text Analysis Results:\n" + result,
	}, nil
}
