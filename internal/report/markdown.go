package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/wlcaudit/internal/model"
)

// syntaxCisco is the code block language for IOS-XE command snippets.
// Renderers without an IOS grammar fall back to plain text.
const syntaxCisco = markdown.SyntaxHighlight("text")

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and change tickets.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.AnalysisReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeInventory(md, report.Inventory)
	w.writeDeviations(md, report)
	w.writeDiagnostics(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.AnalysisReport) {
	md.H1("WLC Best-Practice Report")
	md.PlainText("")

	rows := [][]string{
		{"Source", "`" + report.Source + "`"},
	}
	if report.Device.Hostname != "" {
		rows = append(rows, []string{"Hostname", report.Device.Hostname})
	}
	if report.Device.Version != "" {
		rows = append(rows, []string{"Version", report.Device.Version})
	}
	rows = append(rows,
		[]string{"Analysis Date", report.DateAnalyzed.Format("2006-01-02 15:04:05 MST")},
		[]string{"Run ID", "`" + report.RunID + "`"},
		[]string{"Status", w.getStatusText(report)},
	)

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.AnalysisReport) string {
	if report.Error != "" {
		return "❌ Error - " + report.Error
	}
	if report.UsedSample {
		return "⚠️ Blank input, bundled sample analyzed"
	}
	return "✅ Complete"
}

// writeSummary writes the severity summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.AnalysisReport) {
	md.H2("Severity Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows: [][]string{
			{"🔴 Critical", strconv.Itoa(report.CriticalCount)},
			{"🟠 High", strconv.Itoa(report.HighCount)},
			{"🟡 Medium", strconv.Itoa(report.MediumCount)},
			{"🔵 Low", strconv.Itoa(report.LowCount)},
			{"⚪ Info", strconv.Itoa(report.InfoCount)},
			{"**Total**", "**" + strconv.Itoa(report.TotalDeviations()) + "**"},
		},
	})
	md.PlainText("")

	if report.HasDeviations() {
		w.writePieChart(md, report)
	}

	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart for severity distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.AnalysisReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Deviation Severity Distribution"),
		piechart.WithShowData(true),
	)

	counts := []struct {
		label string
		count int
	}{
		{"Critical", report.CriticalCount},
		{"High", report.HighCount},
		{"Medium", report.MediumCount},
		{"Low", report.LowCount},
		{"Info", report.InfoCount},
	}
	for _, c := range counts {
		if c.count > 0 {
			chart.LabelAndIntValue(c.label, uint64(c.count))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on severity counts.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.AnalysisReport) {
	switch {
	case report.CriticalCount > 0:
		md.Cautionf(
			"Critical security deviations detected! %d SSID setting(s) require immediate attention.",
			report.CriticalCount,
		)
	case report.HighCount > 0:
		md.Warningf(
			"High severity deviations detected. %d setting(s) should be addressed.",
			report.HighCount,
		)
	case report.MediumCount > 0:
		md.Importantf(
			"Medium severity deviations found. %d setting(s) may reduce airtime efficiency.",
			report.MediumCount,
		)
	case report.HasDeviations():
		md.Note("Only low severity and informational deviations detected.")
	default:
		md.Tip("The configuration follows every evaluated best practice.")
	}
	md.PlainText("")
}

// writeInventory writes one table per entity type.
func (w *MarkdownWriter) writeInventory(md *markdown.Markdown, inv model.Inventory) {
	md.H2("Inventory")
	md.PlainText("")

	if inv.TotalEntities() == 0 {
		md.PlainText("No entities found in the configuration.")
		md.PlainText("")
		return
	}

	if len(inv.WirelessNetworks) > 0 {
		rows := make([][]string, len(inv.WirelessNetworks))
		for i, n := range inv.WirelessNetworks {
			rows[i] = []string{
				n.ID, n.Name, n.Security, n.AuthType,
				strconv.Itoa(n.VLAN), titleCase(n.Status), orDash(n.PolicyProfile),
			}
		}
		w.writeTable(md, "### Wireless Networks",
			[]string{"ID", "Name", "Security", "Auth", "VLAN", "Status", "Policy Profile"}, rows)
	}

	if len(inv.RemoteSiteGroups) > 0 {
		rows := make([][]string, len(inv.RemoteSiteGroups))
		for i, g := range inv.RemoteSiteGroups {
			rows[i] = []string{g.Name, orDash(g.PrimaryController), strconv.Itoa(g.APCount), titleCase(g.Status)}
		}
		w.writeTable(md, "### Remote Site Groups",
			[]string{"Name", "Primary Controller", "APs", "Status"}, rows)
	}

	if len(inv.APGroups) > 0 {
		rows := make([][]string, len(inv.APGroups))
		for i, g := range inv.APGroups {
			rows[i] = []string{g.Name, orDash(g.Description), strconv.Itoa(g.APCount), orDash(g.SiteTag), orDash(g.RFProfile)}
		}
		w.writeTable(md, "### AP Groups",
			[]string{"Name", "Description", "APs", "Site Tag", "RF Profile"}, rows)
	}

	if len(inv.PolicyProfiles) > 0 {
		rows := make([][]string, len(inv.PolicyProfiles))
		for i, p := range inv.PolicyProfiles {
			rows[i] = []string{p.Name, p.Type, strconv.Itoa(p.VLAN), orDash(p.QoS), p.AAA}
		}
		w.writeTable(md, "### Policy Profiles",
			[]string{"Name", "Switching", "VLAN", "QoS", "AAA"}, rows)
	}

	if len(inv.PolicyTags) > 0 {
		rows := make([][]string, len(inv.PolicyTags))
		for i, t := range inv.PolicyTags {
			rows[i] = []string{t.Name, orDash(t.Description), orDash(strings.Join(t.Policies, ", "))}
		}
		w.writeTable(md, "### Policy Tags",
			[]string{"Name", "Description", "Policies"}, rows)
	}
}

func (w *MarkdownWriter) writeTable(md *markdown.Markdown, heading string, header []string, rows [][]string) {
	md.PlainText(heading)
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: header,
		Rows:   rows,
	})
	md.PlainText("")
}

// writeDeviations writes all mismatches grouped by severity.
func (w *MarkdownWriter) writeDeviations(md *markdown.Markdown, report *model.AnalysisReport) {
	md.H2("Deviations")
	md.PlainText("")

	if !report.HasDeviations() {
		md.PlainText("No deviations from best practice detected.")
		md.PlainText("")
		return
	}

	headers := map[model.Severity]string{
		model.SeverityCritical: "### 🔴 Critical",
		model.SeverityHigh:     "### 🟠 High",
		model.SeverityMedium:   "### 🟡 Medium",
		model.SeverityLow:      "### 🔵 Low",
		model.SeverityInfo:     "### ⚪ Info",
	}

	for _, severity := range severityOrder {
		deviations := report.GetDeviationsBySeverity(severity)
		if len(deviations) == 0 {
			continue
		}

		md.PlainText(headers[severity])
		md.PlainText("")
		w.writeDeviationsTable(md, deviations)
	}
}

// writeDeviationsTable writes a table of deviations followed by the
// remediation commands for each one.
func (w *MarkdownWriter) writeDeviationsTable(md *markdown.Markdown, deviations []model.Deviation) {
	rows := make([][]string, len(deviations))
	for i, d := range deviations {
		rows[i] = []string{
			"`" + d.ID + "`",
			d.Category,
			d.RelatedTo.Name,
			d.CurrentValue,
			d.BestPractice,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"ID", "Category", "Entity", "Current", "Best Practice"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, d := range deviations {
		md.Details(d.ID+": "+d.Description, d.Impact+" "+d.Recommendation)
		md.PlainText("")
		md.CodeBlocks(syntaxCisco, d.RecommendedCommand)
		md.PlainText("")
	}
}

// writeDiagnostics lists defaulted fields and skipped blocks and checks.
func (w *MarkdownWriter) writeDiagnostics(md *markdown.Markdown, report *model.AnalysisReport) {
	if len(report.Diagnostics) == 0 {
		return
	}

	md.H2("Diagnostics")
	md.PlainText("")

	items := make([]string, len(report.Diagnostics))
	for i, d := range report.Diagnostics {
		item := d.Stage + ": " + d.Kind + " " + d.Block
		if d.Field != "" {
			item += " [" + d.Field + "]"
		}
		if d.Check != "" {
			item += " (" + d.Check + ")"
		}
		items[i] = item + " - " + d.Message
	}
	md.BulletList(items...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [wlcaudit](https://github.com/nao1215/wlcaudit)*")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
