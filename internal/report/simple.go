package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/wlcaudit/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with plain ASCII section
// rules, so it can be piped to files unchanged.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// verbose adds the examined block text and impact to each deviation.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.AnalysisReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeInventory(&sb, report)
	w.writeDeviations(&sb, report)
	w.writeMatched(&sb, report)
	w.writeDiagnostics(&sb, report)
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.AnalysisReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                     WLC BEST-PRACTICE REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Source:         %s\n", report.Source)
	if report.Device.Hostname != "" {
		fmt.Fprintf(sb, "Hostname:       %s\n", report.Device.Hostname)
	}
	if report.Device.Version != "" {
		fmt.Fprintf(sb, "Version:        %s\n", report.Device.Version)
	}
	fmt.Fprintf(sb, "Analysis Date:  %s\n", report.DateAnalyzed.Format("2006-01-02 15:04:05 MST"))
	if report.RunID != "" {
		fmt.Fprintf(sb, "Run ID:         %s\n", report.RunID)
	}
	if report.Digest != "" {
		fmt.Fprintf(sb, "Digest:         %s\n", report.Digest)
	}

	switch {
	case report.Error != "":
		fmt.Fprintf(sb, "Status:         ERROR - %s\n", report.Error)
	case report.UsedSample:
		sb.WriteString("Status:         Complete (input was blank, bundled sample analyzed)\n")
	default:
		sb.WriteString("Status:         Complete\n")
	}

	sb.WriteString("\n")
}

// writeSummary writes the severity summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.AnalysisReport) {
	writeSection(sb, "SEVERITY SUMMARY")

	fmt.Fprintf(sb, "  CRITICAL: %d\n", report.CriticalCount)
	fmt.Fprintf(sb, "  HIGH:     %d\n", report.HighCount)
	fmt.Fprintf(sb, "  MEDIUM:   %d\n", report.MediumCount)
	fmt.Fprintf(sb, "  LOW:      %d\n", report.LowCount)
	fmt.Fprintf(sb, "  INFO:     %d\n", report.InfoCount)
	sb.WriteString("\n")
	fmt.Fprintf(sb, "  TOTAL:    %d deviations\n", report.TotalDeviations())
	if report.MatchedCount > 0 {
		fmt.Fprintf(sb, "  MATCHED:  %d checks\n", report.MatchedCount)
	}
	sb.WriteString("\n")
}

// writeInventory writes one line per extracted entity.
func (w *SimpleWriter) writeInventory(sb *strings.Builder, report *model.AnalysisReport) {
	inv := report.Inventory
	if inv.TotalEntities() == 0 && !w.showEmpty {
		return
	}

	writeSection(sb, "INVENTORY")

	if inv.TotalEntities() == 0 {
		sb.WriteString("  No entities found\n\n")
		return
	}

	if len(inv.WirelessNetworks) > 0 {
		fmt.Fprintf(sb, "Wireless Networks (%d)\n", len(inv.WirelessNetworks))
		for _, n := range inv.WirelessNetworks {
			fmt.Fprintf(sb, "  [%s] %-20s %-5s auth=%-10s vlan=%-4d %-8s policy=%s\n",
				n.ID, n.Name, n.Security, n.AuthType, n.VLAN, titleCase(n.Status), n.PolicyProfile)
		}
		sb.WriteString("\n")
	}

	if len(inv.RemoteSiteGroups) > 0 {
		fmt.Fprintf(sb, "Remote Site Groups (%d)\n", len(inv.RemoteSiteGroups))
		for _, g := range inv.RemoteSiteGroups {
			fmt.Fprintf(sb, "  %-20s controller=%-15s aps=%-4d %s\n",
				g.Name, g.PrimaryController, g.APCount, titleCase(g.Status))
		}
		sb.WriteString("\n")
	}

	if len(inv.APGroups) > 0 {
		fmt.Fprintf(sb, "AP Groups (%d)\n", len(inv.APGroups))
		for _, g := range inv.APGroups {
			fmt.Fprintf(sb, "  %-20s aps=%-4d site-tag=%-15s rf-profile=%s\n",
				g.Name, g.APCount, g.SiteTag, g.RFProfile)
		}
		sb.WriteString("\n")
	}

	if len(inv.PolicyProfiles) > 0 {
		fmt.Fprintf(sb, "Policy Profiles (%d)\n", len(inv.PolicyProfiles))
		for _, p := range inv.PolicyProfiles {
			fmt.Fprintf(sb, "  %-20s %-8s vlan=%-4d qos=%-10s aaa=%s\n",
				p.Name, p.Type, p.VLAN, p.QoS, p.AAA)
		}
		sb.WriteString("\n")
	}

	if len(inv.PolicyTags) > 0 {
		fmt.Fprintf(sb, "Policy Tags (%d)\n", len(inv.PolicyTags))
		for _, t := range inv.PolicyTags {
			fmt.Fprintf(sb, "  %-20s %s\n", t.Name, strings.Join(t.Policies, ", "))
		}
		sb.WriteString("\n")
	}
}

// writeDeviations writes all mismatches grouped by severity.
func (w *SimpleWriter) writeDeviations(sb *strings.Builder, report *model.AnalysisReport) {
	if !report.HasDeviations() && !w.showEmpty {
		return
	}

	writeSection(sb, "DEVIATIONS")

	for _, severity := range severityOrder {
		deviations := report.GetDeviationsBySeverity(severity)
		if len(deviations) == 0 && !w.showEmpty {
			continue
		}

		w.writeDeviationsForSeverity(sb, severity, deviations)
	}
}

// writeDeviationsForSeverity writes deviations of a specific severity level.
func (w *SimpleWriter) writeDeviationsForSeverity(sb *strings.Builder, severity model.Severity, deviations []model.Deviation) {
	indicator := w.getSeverityIndicator(severity)
	fmt.Fprintf(sb, "[%s] %s\n", indicator, severity.String())

	if len(deviations) == 0 {
		sb.WriteString("  No deviations\n\n")
		return
	}

	for _, d := range deviations {
		fmt.Fprintf(sb, "  * %s (%s %s)\n", d.Category, d.RelatedTo.Type, d.RelatedTo.Name)
		fmt.Fprintf(sb, "    ID:            %s\n", d.ID)
		fmt.Fprintf(sb, "    Current:       %s\n", d.CurrentValue)
		fmt.Fprintf(sb, "    Best Practice: %s\n", d.BestPractice)
		fmt.Fprintf(sb, "    Issue:         %s\n", d.Description)
		if w.verbose {
			fmt.Fprintf(sb, "    Impact:        %s\n", d.Impact)
		}
		fmt.Fprintf(sb, "    Fix:           %s\n", d.Recommendation)
		sb.WriteString("    Commands:\n")
		for line := range strings.Lines(d.RecommendedCommand) {
			fmt.Fprintf(sb, "      %s\n", strings.TrimRight(line, "\n"))
		}
		if w.verbose && d.CurrentConfig != "" {
			sb.WriteString("    Current configuration:\n")
			for line := range strings.Lines(d.CurrentConfig) {
				fmt.Fprintf(sb, "      | %s\n", strings.TrimRight(line, "\n"))
			}
		}
	}
	sb.WriteString("\n")
}

// writeMatched lists checks that passed, if the analysis reported them.
func (w *SimpleWriter) writeMatched(sb *strings.Builder, report *model.AnalysisReport) {
	passed := matched(report)
	if len(passed) == 0 {
		return
	}

	writeSection(sb, "MATCHED")
	for _, d := range passed {
		fmt.Fprintf(sb, "  [ok] %-20s %s %s: %s\n", d.ID, d.RelatedTo.Type, d.RelatedTo.Name, d.CurrentValue)
	}
	sb.WriteString("\n")
}

// writeDiagnostics lists defaulted fields and skipped blocks and checks.
func (w *SimpleWriter) writeDiagnostics(sb *strings.Builder, report *model.AnalysisReport) {
	if len(report.Diagnostics) == 0 {
		return
	}

	writeSection(sb, "DIAGNOSTICS")
	for _, d := range report.Diagnostics {
		target := d.Kind + " " + d.Block
		if d.Field != "" {
			target += " [" + d.Field + "]"
		}
		if d.Check != "" {
			target += " (" + d.Check + ")"
		}
		fmt.Fprintf(sb, "  [%s] %s: %s\n", d.Stage, target, d.Message)
	}
	sb.WriteString("\n")
}

// getSeverityIndicator returns a visual indicator for the severity level.
func (w *SimpleWriter) getSeverityIndicator(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return "!!!"
	case model.SeverityHigh:
		return "!!"
	case model.SeverityMedium:
		return "!"
	case model.SeverityLow:
		return "-"
	case model.SeverityInfo:
		return "i"
	default:
		return "?"
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by wlcaudit\n")
	sb.WriteString("https://github.com/nao1215/wlcaudit\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
