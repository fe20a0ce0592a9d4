package ginserver

import (
	"embed"
	"html/template"

	"healthtrack/internal/app/dto"
)

//go:embed templates/*.html
var templateFS embed.FS

func loadTemplates() *template.Template {
	funcs := template.FuncMap{
		"timestamp": func(r dto.Report) string { return r.CreatedAt.Format(dto.TimestampLayout) },
		"statusClass": func(r dto.MetricResult) string {
			switch {
			case r.Invalid:
				return "error"
			case r.Status == "Normal":
				return "normal"
			default:
				return "abnormal"
			}
		},
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}
