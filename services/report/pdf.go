package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"

	"github.com/elearn360/backend/core"
	"github.com/elearn360/backend/core/project"
)

// statusLabels are the human labels printed on the report. Project, task
// and deliverable statuses share the namespace.
var statusLabels = map[string]string{
	"active":      "Activo",
	"completed":   "Completado",
	"on_hold":     "En Pausa",
	"cancelled":   "Cancelado",
	"pending":     "Pendiente",
	"in_progress": "En Progreso",
	"in_review":   "En Revisión",
	"approved":    "Aprobado",
	"rejected":    "Rechazado",
}

func label(status string) string {
	if l, ok := statusLabels[status]; ok {
		return l
	}
	return status
}

// PDFRenderer renders project summaries as downloadable PDF documents. It is
// a pure reader of the project detail; progress figures come in already
// computed.
type PDFRenderer struct {
	appName string
}

func NewPDFRenderer(conf *core.Config) *PDFRenderer {
	return &PDFRenderer{appName: conf.AppName}
}

// ProjectReport renders the project header, overall progress and a
// per-module task table with checklist and deliverable state.
func (r *PDFRenderer) ProjectReport(det project.Detail) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("") // cp1252: covers the catalog's Spanish strings
	pdf.SetTitle(tr(det.Project.Name), false)
	pdf.AddPage()

	prj := det.Project

	// header
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr(prj.Name), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s — %s", r.appName, time.Now().UTC().Format("2006-01-02"))), "", 1, "L", false, 0, "")
	pdf.Ln(2)
	pdf.SetTextColor(0, 0, 0)

	r.keyValue(pdf, tr, "Cliente", prj.Client)
	r.keyValue(pdf, tr, "Fechas", fmt.Sprintf("%s / %s",
		prj.StartDate.Format("2006-01-02"), prj.EndDate.Format("2006-01-02")))
	r.keyValue(pdf, tr, "Estado", label(prj.Status))
	billing := fmt.Sprintf("%.2f EUR (fijo)", prj.TotalCost)
	if prj.BillingMode == project.BillingPerModule {
		billing = fmt.Sprintf("%.2f EUR (por módulos)", prj.TotalCost)
	}
	if prj.EnrollmentFee > 0 {
		billing += fmt.Sprintf(" + %.2f EUR matrícula", prj.EnrollmentFee)
	}
	r.keyValue(pdf, tr, "Facturación", billing)
	r.keyValue(pdf, tr, "Progreso Global", fmt.Sprintf("%d%% (%d/%d tareas)",
		det.Progress.Overall.Percent, det.Progress.Overall.Completed, det.Progress.Overall.Total))
	pdf.Ln(4)

	for _, grp := range det.Modules {
		r.moduleSection(pdf, tr, grp, det.Progress)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "rendering project report")
	}
	return buf.Bytes(), nil
}

func (r *PDFRenderer) keyValue(pdf *gofpdf.Fpdf, tr func(string) string, key, value string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(40, 6, tr(key), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr(value), "", 1, "L", false, 0, "")
}

func (r *PDFRenderer) moduleSection(pdf *gofpdf.Fpdf, tr func(string) string, grp project.ModuleGroup, prog project.ProjectProgress) {
	name := grp.Name
	if name == "" {
		name = "Tareas adicionales"
	}

	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("%s — %d%%", name, grp.Progress.Percent)), "", 1, "L", true, 0, "")
	pdf.Ln(1)

	// task table header
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(250, 250, 250)
	pdf.CellFormat(95, 6, tr("Tarea"), "1", 0, "L", true, 0, "")
	pdf.CellFormat(28, 6, tr("Estado"), "1", 0, "L", true, 0, "")
	pdf.CellFormat(22, 6, tr("Checklist"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(45, 6, tr("Entregables"), "1", 1, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, tsk := range grp.Tasks {
		items := prog.PerTask[tsk.ID]
		pdf.CellFormat(95, 6, tr(truncate(tsk.Title, 58)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(28, 6, tr(label(tsk.Status)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(22, 6, fmt.Sprintf("%d/%d", items.Completed, items.Total), "1", 0, "C", false, 0, "")
		pdf.CellFormat(45, 6, tr(truncate(deliverableSummary(tsk), 28)), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func deliverableSummary(tsk project.Task) string {
	if len(tsk.Deliverables) == 0 {
		return "-"
	}
	counts := make(map[string]int, 4)
	for _, dlv := range tsk.Deliverables {
		counts[dlv.Status]++
	}
	out := ""
	for _, status := range project.AllDeliverableStatuses {
		if n := counts[status]; n > 0 {
			if out != "" {
				out += ", "
			}
			out += fmt.Sprintf("%d %s", n, label(status))
		}
	}
	return out
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
