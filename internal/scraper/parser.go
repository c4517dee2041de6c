package scraper

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/krishna2206/pharmanio-backend/internal/models"
)

// periodPattern matches the date range of the publication title,
// e.g. "Pharmacies de garde du 05/01/2025 au 11/01/2025".
var periodPattern = regexp.MustCompile(`(\d{2}/\d{2}/\d{4})\s+au\s+(\d{2}/\d{2}/\d{4})`)

const dateLayout = "02/01/2006"

// Parser extracts the validity period and raw listings from page markup.
type Parser struct {
	logger *zap.Logger
}

// NewParser creates a parser.
func NewParser(logger *zap.Logger) *Parser {
	return &Parser{logger: logger}
}

// Parse reads the publication markup. The returned period is nil when the
// title is missing or malformed; the listings are empty when the results
// table is absent. Neither case is an error: the page shape varies and
// the pipeline degrades instead of failing.
func (p *Parser) Parse(markup string) (*models.ValidityPeriod, []models.RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse markup: %w", err)
	}

	return p.extractPeriod(doc), p.extractListings(doc), nil
}

func (p *Parser) extractPeriod(doc *goquery.Document) *models.ValidityPeriod {
	title := strings.TrimSpace(doc.Find("h1.text-center").First().Text())
	if title == "" {
		p.logger.Warn("Publication title not found")
		return nil
	}

	matches := periodPattern.FindStringSubmatch(title)
	if matches == nil {
		p.logger.Warn("No date range in publication title", zap.String("title", title))
		return nil
	}

	start, err := time.Parse(dateLayout, matches[1])
	if err != nil {
		p.logger.Warn("Invalid start date in title", zap.String("date", matches[1]))
		return nil
	}
	end, err := time.Parse(dateLayout, matches[2])
	if err != nil {
		p.logger.Warn("Invalid end date in title", zap.String("date", matches[2]))
		return nil
	}

	return &models.ValidityPeriod{StartDate: start, EndDate: end}
}

func (p *Parser) extractListings(doc *goquery.Document) []models.RawListing {
	table := doc.Find("table#datatable-buttons")
	if table.Length() == 0 {
		p.logger.Warn("Results table not found, page carries no listings")
		return nil
	}

	var listings []models.RawListing
	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			// Malformed rows show up routinely in the source markup.
			return
		}

		name := strings.TrimSpace(cells.Eq(0).Find("b").First().Text())
		address := strings.TrimSpace(cells.Eq(1).Text())

		listings = append(listings, models.RawListing{
			Name:      name,
			Address:   address,
			CityToken: cityToken(address),
			Contacts:  contactLines(cells.Eq(2)),
		})
	})

	p.logger.Debug("Extracted listings", zap.Int("count", len(listings)))

	return listings
}

// cityToken takes the left segment of the "<city> - <rest>" address
// convention. Addresses without the separator yield an empty token.
func cityToken(address string) string {
	if !strings.Contains(address, " - ") {
		return ""
	}
	parts := strings.SplitN(address, " - ", 2)
	return strings.TrimSpace(parts[0])
}

// contactLines collects the text runs of the contact cell one per line,
// dropping blanks. Numbers are separated by <br> in the source markup.
func contactLines(cell *goquery.Selection) []string {
	var contacts []string
	for _, node := range cell.Nodes {
		collectText(node, &contacts)
	}
	return contacts
}

func collectText(n *html.Node, out *[]string) {
	if n.Type == html.TextNode {
		if text := strings.TrimSpace(n.Data); text != "" {
			*out = append(*out, text)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, out)
	}
}
