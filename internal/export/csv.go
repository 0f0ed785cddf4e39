// Package export выгружает записи журнала в CSV для Excel:
// UTF-8 с BOM, разделитель «;», комментарий всегда в кавычках.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"gmp-logbook/internal/models"
)

const bom = "\uFEFF"

var Header = []string{"ID", "Cible", "Activité", "Commentaire", "Utilisateur", "Rôle", "Date/Heure", "Statut", "Signé"}

// WriteCSV пишет заголовок и по строке на запись. Строки разделяются "\n",
// после последней перевода строки нет.
func WriteCSV(w io.Writer, entries []models.Entry) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(bom + strings.Join(Header, ";")); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range entries {
		if _, err := bw.WriteString("\n" + strings.Join(row(e), ";")); err != nil {
			return fmt.Errorf("write csv row %s: %w", e.ID, err)
		}
	}
	return bw.Flush()
}

func row(e models.Entry) []string {
	signed := "non"
	if e.Signed {
		signed = "oui"
	}
	return []string{
		e.ID,
		e.TargetName,
		string(e.Activity),
		quote(e.Comment),
		e.UserName,
		string(e.UserRole),
		e.CreatedAt.UTC().Format(time.RFC3339),
		string(e.Status),
		signed,
	}
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// FileName: имя файла выгрузки с меткой времени в миллисекундах.
func FileName(at time.Time) string {
	return fmt.Sprintf("logbook_%d.csv", at.UnixMilli())
}
