package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/billed/internal/models"
	"gitlab.com/yelinaung/billed/internal/newbill"
)

const submitFieldCount = 7

var errSubmitFormat = errors.New("au moins type;nom;date;montant sont requis")

// parseSubmitArgs reads "type;nom;date;montant;tva;pct;commentaire".
// The commentary keeps any further separators.
func parseSubmitArgs(args string) (newbill.Fields, error) {
	parts := strings.SplitN(args, ";", submitFieldCount)
	if len(parts) < 4 {
		return newbill.Fields{}, errSubmitFormat
	}
	for i := range parts[:min(len(parts), submitFieldCount-1)] {
		parts[i] = strings.TrimSpace(parts[i])
	}

	expenseType, err := resolveType(parts[0])
	if err != nil {
		return newbill.Fields{}, err
	}

	fields := newbill.Fields{
		Type: expenseType,
		Name: parts[1],
		Date: parts[2],
	}

	if fields.Amount, err = parseMoney("montant", parts[3]); err != nil {
		return newbill.Fields{}, err
	}
	if len(parts) > 4 && parts[4] != "" {
		if fields.VAT, err = parseMoney("tva", parts[4]); err != nil {
			return newbill.Fields{}, err
		}
	}
	if len(parts) > 5 && parts[5] != "" {
		pct, convErr := strconv.Atoi(strings.TrimSuffix(parts[5], "%"))
		if convErr != nil {
			return newbill.Fields{}, fmt.Errorf("pct %q n'est pas un entier", parts[5])
		}
		fields.Pct = pct
	}
	if len(parts) > 6 {
		fields.Commentary = strings.TrimSpace(parts[6])
	}

	return fields, nil
}

// resolveType accepts a position in models.ExpenseTypes (1-based) or a type
// name in any case. An empty value leaves the type unset.
func resolveType(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		if n < 1 || n > len(models.ExpenseTypes) {
			return "", fmt.Errorf("type %d inconnu, choisissez entre 1 et %d", n, len(models.ExpenseTypes))
		}
		return models.ExpenseTypes[n-1], nil
	}
	for _, t := range models.ExpenseTypes {
		if strings.EqualFold(t, raw) {
			return t, nil
		}
	}
	return "", fmt.Errorf("type %q inconnu", raw)
}

// parseMoney reads a decimal written with a dot or a comma.
func parseMoney(field, raw string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "€"))
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s %q n'est pas un nombre", field, raw)
	}
	return d, nil
}
