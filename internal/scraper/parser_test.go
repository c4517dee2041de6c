package scraper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const fullPage = `<html><body>
<h1 class="text-center">Pharmacies de garde du 05/01/2025 au 11/01/2025</h1>
<table id="datatable-buttons">
<tbody>
<tr>
  <td><b>PHARMACIE RINA</b></td>
  <td>TANA - Analakely, Escalier Ranavalona</td>
  <td>032 11 222 33<br/>034 44 555 66</td>
</tr>
<tr>
  <td><b>PHARMACIE HASINA</b></td>
  <td>ANTSIRABE - Avenue de l'Independance</td>
  <td>033 77 888 99</td>
</tr>
<tr>
  <td>Pas de gras ici</td>
  <td>Moramanga</td>
  <td></td>
</tr>
<tr>
  <td>ligne incomplete</td>
  <td>deux cellules seulement</td>
</tr>
</tbody>
</table>
</body></html>`

const noTablePage = `<html><body>
<h1 class="text-center">Pharmacies de garde du 05/01/2025 au 11/01/2025</h1>
<p>Aucune liste disponible aujourd'hui.</p>
</body></html>`

const noTitlePage = `<html><body>
<table id="datatable-buttons">
<tbody>
<tr>
  <td><b>PHARMACIE RINA</b></td>
  <td>TANA - Analakely</td>
  <td>032 11 222 33</td>
</tr>
</tbody>
</table>
</body></html>`

func newTestParser() *Parser {
	return NewParser(zap.NewNop())
}

func TestParse_FullPage(t *testing.T) {
	period, listings, err := newTestParser().Parse(fullPage)

	require.NoError(t, err)
	require.NotNil(t, period)
	assert.Equal(t, time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC), period.StartDate)
	assert.Equal(t, time.Date(2025, time.January, 11, 0, 0, 0, 0, time.UTC), period.EndDate)

	// The two-cell row is dropped.
	require.Len(t, listings, 3)

	assert.Equal(t, "PHARMACIE RINA", listings[0].Name)
	assert.Equal(t, "TANA - Analakely, Escalier Ranavalona", listings[0].Address)
	assert.Equal(t, "TANA", listings[0].CityToken)
	assert.Equal(t, []string{"032 11 222 33", "034 44 555 66"}, listings[0].Contacts)

	assert.Equal(t, "PHARMACIE HASINA", listings[1].Name)
	assert.Equal(t, "ANTSIRABE", listings[1].CityToken)
	assert.Equal(t, []string{"033 77 888 99"}, listings[1].Contacts)

	// No bold run means no name; no separator means no city token.
	assert.Equal(t, "", listings[2].Name)
	assert.Equal(t, "", listings[2].CityToken)
	assert.Empty(t, listings[2].Contacts)
}

func TestParse_NoTable(t *testing.T) {
	period, listings, err := newTestParser().Parse(noTablePage)

	require.NoError(t, err)
	require.NotNil(t, period)
	assert.Equal(t, time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC), period.StartDate)
	assert.Empty(t, listings)
}

func TestParse_NoTitle(t *testing.T) {
	period, listings, err := newTestParser().Parse(noTitlePage)

	require.NoError(t, err)
	assert.Nil(t, period)
	require.Len(t, listings, 1)
	assert.Equal(t, "PHARMACIE RINA", listings[0].Name)
}

func TestParse_TitleWithoutDateRange(t *testing.T) {
	page := `<html><body><h1 class="text-center">Pharmacies de garde cette semaine</h1></body></html>`

	period, listings, err := newTestParser().Parse(page)

	require.NoError(t, err)
	assert.Nil(t, period)
	assert.Empty(t, listings)
}

func TestParse_InvalidDateInTitle(t *testing.T) {
	page := `<html><body><h1 class="text-center">Pharmacies de garde du 32/13/2025 au 11/01/2025</h1></body></html>`

	period, _, err := newTestParser().Parse(page)

	require.NoError(t, err)
	assert.Nil(t, period)
}

func TestParse_EmptyMarkup(t *testing.T) {
	period, listings, err := newTestParser().Parse("")

	require.NoError(t, err)
	assert.Nil(t, period)
	assert.Empty(t, listings)
}

func TestParse_ContactLinesDropBlanks(t *testing.T) {
	page := `<html><body>
<table id="datatable-buttons">
<tbody>
<tr>
  <td><b>PHARMACIE TEST</b></td>
  <td>TANA - Quartier</td>
  <td>
    032 11 222 33
    <br/>
    <br/>
    <span>034 44 555 66</span>
  </td>
</tr>
</tbody>
</table>
</body></html>`

	_, listings, err := newTestParser().Parse(page)

	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, []string{"032 11 222 33", "034 44 555 66"}, listings[0].Contacts)
}

func TestCityToken(t *testing.T) {
	assert.Equal(t, "TANA", cityToken("TANA - Analakely"))
	assert.Equal(t, "DIEGO", cityToken("DIEGO - Rue Colbert - Centre"))
	assert.Equal(t, "", cityToken("Moramanga"))
	assert.Equal(t, "", cityToken("Tana-Ville"))
	assert.Equal(t, "", cityToken(""))
}
