package biz

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/kart-io/usrsp-rag/internal/model"
	"github.com/kart-io/usrsp-rag/pkg/utils/json"
)

// Reporter 将查询结果写到标准输出。
type Reporter struct {
	w        io.Writer
	colorize bool
}

// NewReporter creates a reporter writing to w. Labels are coloured only
// when colorize is set.
func NewReporter(w io.Writer, colorize bool) *Reporter {
	return &Reporter{w: w, colorize: colorize}
}

func (r *Reporter) label(text string, attrs ...color.Attribute) string {
	if !r.colorize {
		return text
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(text)
}

// ReportRecords prints the invitation dump, then the family dump.
func (r *Reporter) ReportRecords(invitations []model.InvitationRecord, families []model.FamilyLinkingRecord) error {
	inv, err := RenderInvitations(invitations)
	if err != nil {
		return err
	}
	fam, err := RenderFamilies(families)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(r.w, "%s %s\n", r.label("Invitation data:", color.FgCyan), inv); err != nil {
		return err
	}
	_, err = fmt.Fprintf(r.w, "%s %s\n", r.label("Family data:", color.FgCyan), fam)
	return err
}

// ReportNoData prints the no-data notice.
func (r *Reporter) ReportNoData(customerID string) error {
	_, err := fmt.Fprintf(r.w, "%s%s\n", r.label("No data found for customer ID: ", color.FgYellow), customerID)
	return err
}

// ReportPrompt prints the assembled prompt.
func (r *Reporter) ReportPrompt(prompt string) error {
	_, err := fmt.Fprintln(r.w, prompt)
	return err
}

// ReportAnswer prints the response and the JSON list of source ids.
func (r *Reporter) ReportAnswer(answer string, sources []*string) error {
	if sources == nil {
		sources = []*string{}
	}
	src, err := json.MarshalString(sources)
	if err != nil {
		return fmt.Errorf("render sources: %w", err)
	}
	_, err = fmt.Fprintf(r.w, "%s %s\n%s %s\n",
		r.label("Response:", color.FgGreen, color.Bold), answer,
		r.label("Sources:", color.FgGreen), src)
	return err
}
