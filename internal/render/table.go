package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// WriteTable vuelca un set de filas como tabla de texto alineada.
// Es la superficie de presentación de la consola; cualquier otra
// tecnología puede ignorar este archivo y consumir el ViewModel directo.
func WriteTable(w io.Writer, title string, header Row, rows []Row) error {
	if title != "" {
		if _, err := fmt.Fprintf(w, "%s (%d)\n", title, len(rows)); err != nil {
			return err
		}
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if len(header) > 0 {
		fmt.Fprintln(tw, strings.Join(header, "\t"))
		fmt.Fprintln(tw, underline(header))
	}
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	return tw.Flush()
}

func underline(header Row) string {
	parts := make([]string, len(header))
	for i, h := range header {
		parts[i] = strings.Repeat("-", len(h))
	}
	return strings.Join(parts, "\t")
}
