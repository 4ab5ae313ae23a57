package cli

import (
	"context"
	"time"
)

// Stats prints the dashboard counters and the latest plaques.
func (a *App) Stats(ctx context.Context) error {
	st := a.data.Stats(time.Now())

	a.printf("Utilisateurs:        %d\n", st.TotalUsers)
	a.printf("Plaques:             %d\n", st.TotalPlaques)
	a.printf("Plaques ce mois:     %d\n", st.PlaquesThisMonth)
	a.printf("Activité récente:    %d\n", st.RecentActivity)

	if len(st.Recent) == 0 {
		a.println("Aucune plaque enregistrée.")
		return nil
	}
	a.println("Plaques récentes:")
	for _, p := range st.Recent {
		a.printf("  %s  %s  %s\n", p.Numero, p.OwnerName(), p.CreatedAt.Format("02/01/2006"))
	}
	return nil
}

// Metrics dumps the process counters in the Prometheus text format.
func (a *App) Metrics(ctx context.Context) error {
	return a.metrics.WriteText(a.out)
}

func (a *App) ToggleDarkMode(ctx context.Context) error {
	on, err := a.data.ToggleDarkMode(ctx)
	if err != nil {
		return a.fail(ctx, "Erreur lors de l'enregistrement", err)
	}
	if on {
		a.println("Mode sombre activé.")
	} else {
		a.println("Mode sombre désactivé.")
	}
	return nil
}
