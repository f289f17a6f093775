package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/georgemunganga/orderdesk/internal/modules/catalog"
)

func checkPrices(c *cli.Context) error {
	_, store, err := bootstrap(c.Context)
	if err != nil {
		return err
	}
	defer store.Close()

	products, err := catalog.NewService(catalog.NewSQLRepository(store)).ListProducts(c.Context)
	if err != nil {
		return err
	}
	printPrices(c.App.Writer, products)
	return nil
}

func printPrices(w io.Writer, products []*catalog.Product) {
	fmt.Fprintf(w, "%-40s | %12s | %12s\n", "Product", "Wholesale", "Retail")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	for _, p := range products {
		wholesale := "-"
		if p.WholesalePrice.Valid {
			wholesale = p.WholesalePrice.Decimal.StringFixed(2)
		}
		fmt.Fprintf(w, "%-40s | %12s | %12s\n", p.Name, wholesale, p.RetailPrice.StringFixed(2))
	}
	fmt.Fprintf(w, "\nTotal products: %d\n", len(products))
}

func importPrices(c *cli.Context) error {
	f, err := os.Open(c.String("file"))
	if err != nil {
		return errors.Wrap(err, "open price list")
	}
	defer f.Close()

	rows, err := parsePriceList(f)
	if err != nil {
		return err
	}

	_, store, err := bootstrap(c.Context)
	if err != nil {
		return err
	}
	defer store.Close()

	updated, inserted, err := catalog.NewService(catalog.NewSQLRepository(store)).ImportPrices(c.Context, rows)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"updated": updated, "inserted": inserted}).Info("Price list imported")
	fmt.Fprintf(c.App.Writer, "Updated %d product(s), inserted %d product(s)\n", updated, inserted)
	return nil
}

// parsePriceList reads name,category,wholesale_price,price records.
// A header row and blank wholesale prices are allowed.
func parsePriceList(r io.Reader) ([]catalog.PriceRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 4
	reader.TrimLeadingSpace = true

	var rows []catalog.PriceRow
	for line := 1; ; line++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read price list")
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "name") {
			continue
		}

		row := catalog.PriceRow{Name: strings.TrimSpace(rec[0]), Category: strings.TrimSpace(rec[1])}
		if s := strings.TrimSpace(rec[2]); s != "" {
			d, err := decimal.NewFromString(s)
			if err != nil {
				return nil, errors.Errorf("line %d: invalid wholesale price %q", line, s)
			}
			row.WholesalePrice = decimal.NewNullDecimal(d)
		}
		row.RetailPrice, err = decimal.NewFromString(strings.TrimSpace(rec[3]))
		if err != nil {
			return nil, errors.Errorf("line %d: invalid price %q", line, rec[3])
		}
		rows = append(rows, row)
	}
	return rows, nil
}
