package preflight

// checks_pipeline.go — sección 12: presencia de los archivos del pipeline.
//
// Vista de pájaro sobre el acoplamiento por archivos: todos los
// artefactos que los colectores deben dejar y el slot de estado. Las
// secciones por-feed ya fallaron lo suyo; esta resume qué colector no
// corrió en absoluto.

import (
	"fmt"
	"strings"
	"time"

	"github.com/alejandrodnm/courtline/internal/domain"
)

func (a *Auditor) checkPipeline() Section {
	s := Section{Name: "pipeline"}

	var missing []string
	for _, feed := range domain.FeedNames() {
		if _, err := a.feeds.Meta(feed); err != nil {
			missing = append(missing, feed)
		}
	}
	if len(missing) > 0 {
		s.Results = append(s.Results, fail("pipeline.artifacts",
			fmt.Sprintf("%d/%d artefactos ausentes", len(missing), len(domain.FeedNames())),
			strings.Join(missing, ", "),
			"correr los colectores de "+strings.Join(missing, ", ")))
	} else {
		s.Results = append(s.Results, pass("pipeline.artifacts",
			fmt.Sprintf("%d artefactos presentes", len(domain.FeedNames()))))
	}

	status, err := a.ledger.ReadStatus()
	switch {
	case err != nil:
		s.Results = append(s.Results, fail("pipeline.status",
			"slot de estado corrupto", err.Error(), "borrar .audit_status.json y correr el preflight"))
	case status == nil:
		s.Results = append(s.Results, warn("pipeline.status",
			"sin corridas previas registradas", "primera corrida en este entorno"))
	default:
		age := a.now().Sub(status.Timestamp).Round(time.Minute)
		s.Results = append(s.Results, pass("pipeline.status",
			fmt.Sprintf("última corrida %s hace %s", status.Summary, age)))
	}
	return s
}
