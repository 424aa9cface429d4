package models

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/born-ml/convnets/internal/nn"
	"github.com/born-ml/convnets/internal/tensor"
)

// StageSummary describes one top-level stage of a classifier.
type StageSummary struct {
	Name        string
	Description string
	OutputShape tensor.Shape
	Parameters  int
}

// Summary is the stage-by-stage shape and parameter report of a model.
type Summary struct {
	Arch   string
	Input  tensor.Shape
	Stages []StageSummary
	Total  int
}

// Summarize threads input through the stages of m using static shape
// inference. No kernels run, so it is cheap for any model size.
func Summarize[B tensor.Backend](m Classifier[B], input tensor.Shape) (*Summary, error) {
	s := &Summary{Arch: m.Arch(), Input: input.Clone()}

	shape := input
	for _, stage := range m.Stages() {
		out, err := stage.Module.OutputShape(shape)
		if err != nil {
			return nil, fmt.Errorf("%s: stage %s: %w", m.Arch(), stage.Name, err)
		}
		params := nn.NumParameters(stage.Module)
		s.Stages = append(s.Stages, StageSummary{
			Name:        stage.Name,
			Description: describe(stage.Module),
			OutputShape: out,
			Parameters:  params,
		})
		s.Total += params
		shape = out
	}
	return s, nil
}

// describe returns a one-line description of a module.
func describe[B tensor.Backend](m nn.Module[B]) string {
	if c, ok := m.(nn.Container[B]); ok {
		var kinds []string
		for _, child := range c.Children() {
			kinds = append(kinds, kindOf(child.Module))
		}
		return "Sequential(" + strings.Join(kinds, ", ") + ")"
	}
	return m.String()
}

func kindOf[B tensor.Backend](m nn.Module[B]) string {
	s := m.String()
	if i := strings.IndexByte(s, '('); i > 0 {
		return s[:i]
	}
	return s
}

// OutputShape returns the shape produced by the last stage.
func (s *Summary) OutputShape() tensor.Shape {
	if len(s.Stages) == 0 {
		return s.Input
	}
	return s.Stages[len(s.Stages)-1].OutputShape
}

// String renders the summary as an aligned table.
func (s *Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s, input %v\n", s.Arch, s.Input)

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STAGE\tOUTPUT SHAPE\tPARAMS\tLAYERS")
	for _, st := range s.Stages {
		fmt.Fprintf(tw, "%s\t%v\t%d\t%s\n", st.Name, st.OutputShape, st.Parameters, st.Description)
	}
	_ = tw.Flush()

	fmt.Fprintf(&b, "total parameters: %d\n", s.Total)
	return b.String()
}
