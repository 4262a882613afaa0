package extractor

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"imobot/tools"
)

// Signal carrega os fatos tipados extraídos de UMA mensagem.
// Campo vazio (ou nil/zero) significa "sem evidência", nunca um default.
type Signal struct {
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Company      string `json:"company,omitempty"`
	Intent       string `json:"intent,omitempty"`
	PropertyType string `json:"propertyType,omitempty"`
	Bedrooms     *int   `json:"bedrooms,omitempty"`
	Location     string `json:"location,omitempty"`
	Budget       int64  `json:"budget,omitempty"`
}

const (
	INTENT_BUY  = "buy"
	INTENT_RENT = "rent"
	INTENT_SELL = "sell"
)

const (
	PROPERTY_APARTMENT  = "apartamento"
	PROPERTY_HOUSE      = "casa"
	PROPERTY_LAND       = "terreno"
	PROPERTY_COMMERCIAL = "sala comercial"
)

const (
	BEDROOMS_MIN = 0
	BEDROOMS_MAX = 12
)

// captureRule é uma regra nomeada de extração: a primeira regex que casar
// vence. Manter as listas ordenadas e por idioma facilita adicionar padrões
// novos sem mexer nas existentes.
type captureRule struct {
	name string
	re   *regexp.Regexp
}

// keywordFamily classifica o texto num rótulo fechado; a primeira família
// que casar vence e as demais nem são avaliadas.
type keywordFamily struct {
	label string
	re    *regexp.Regexp
}

// token de nome próprio: começa maiúscula, até 4 palavras. Evita engolir o
// resto da frase depois do nome ("meu nome é Ana, quero comprar...").
const properName = `(\p{Lu}[\p{L}'.-]*(?:\s+\p{Lu}[\p{L}'.-]*){0,3})`

var nameRules = []captureRule{
	{"intro", regexp.MustCompile(`\b(?i:meu nome é|meu nome e|me chamo|aqui é|aqui e|my name is|this is|i am|i'm|sou [oa])\s+` + properName)},
	{"label", regexp.MustCompile(`(?i:\bnome|\bname)\s*:\s*([^\n,;.!?]+)`)},
}

var companyRules = []captureRule{
	{"intro", regexp.MustCompile(`\b(?i:trabalho n[ao]|trabalho em|i work at|work at|work for)\s+` + properName)},
	{"label", regexp.MustCompile(`(?i:\bempresa|\bcompany)\s*:\s*([^\n,;.!?]+)`)},
}

var locationRules = []captureRule{
	// marcador explícito primeiro; a preposição genérica só entra se ele faltar
	{"bairro", regexp.MustCompile(`\b(?i:bairro)\s+` + properName)},
	{"preposition", regexp.MustCompile(`\b(?i:em|no|na|in|at)\s+` + properName)},
}

// e-mail RFC "frouxo", mesmo conjunto de caracteres do ValidateEmail
var emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// telefone BR: DDI opcional, DDD, assinante de 8-9 dígitos
var phoneRe = regexp.MustCompile(`(?:\+?55[\s.-]?)?\(?\d{2}\)?[\s.-]?\d{4,5}[\s.-]?\d{4}\b`)

var bedroomsRe = regexp.MustCompile(`(?i)\b(\d{1,3})\s*(?:quartos?|dormit[óo]rios?|su[íi]tes?|bedrooms?)\b`)

var budgetRules = []captureRule{
	{"currency", regexp.MustCompile(`(?i)r\$\s*([\d.,]+)\s*(mil|k|milh[õo]es|milh[ãa]o|mi)?\b`)},
	{"magnitude", regexp.MustCompile(`(?i)\b([\d.,]+)\s*(mil|k|milh[õo]es|milh[ãa]o|mi)\b`)},
}

var intentFamilies = []keywordFamily{
	{INTENT_BUY, regexp.MustCompile(`(?i)\b(comprar|compra|comprando|adquirir|buy|buying|purchase)\b`)},
	{INTENT_RENT, regexp.MustCompile(`(?i)\b(alugar|aluguel|alugando|loca[çc][ãa]o|rent|renting|lease)\b`)},
	{INTENT_SELL, regexp.MustCompile(`(?i)\b(vender|venda|vendendo|sell|selling)\b`)},
}

var propertyFamilies = []keywordFamily{
	{PROPERTY_APARTMENT, regexp.MustCompile(`(?i)\b(apartamento|apto|ap[êe]|flat|apartment|kitnet)\b`)},
	{PROPERTY_HOUSE, regexp.MustCompile(`(?i)\b(casa|sobrado|house)\b`)},
	{PROPERTY_LAND, regexp.MustCompile(`(?i)\b(terreno|lote|land)\b`)},
	{PROPERTY_COMMERCIAL, regexp.MustCompile(`(?i)\b(sala comercial|comercial|loja|escrit[óo]rio|office)\b`)},
}

// Extract roda todas as regras de forma independente sobre o texto e devolve
// os fatos encontrados. Nunca retorna erro: padrão que não casa vira campo
// ausente.
func Extract(text string) Signal {
	var sig Signal
	if strings.TrimSpace(text) == "" {
		return sig
	}

	if m := emailRe.FindString(text); m != "" {
		sig.Email = strings.ToLower(m)
	}
	if m := phoneRe.FindString(text); m != "" {
		sig.Phone = tools.CanonicalPhone(m)
	}
	sig.Name = firstCapture(nameRules, text)
	sig.Company = firstCapture(companyRules, text)
	sig.Intent = firstFamily(intentFamilies, text)
	sig.PropertyType = firstFamily(propertyFamilies, text)

	if m := bedroomsRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			sig.Bedrooms = clampBedrooms(n)
		}
	}
	sig.Location = firstCapture(locationRules, text)
	sig.Budget = extractBudget(text)
	return sig
}

func firstCapture(rules []captureRule, text string) string {
	for _, r := range rules {
		if m := r.re.FindStringSubmatch(text); m != nil {
			return trimCapture(m[1])
		}
	}
	return ""
}

func firstFamily(families []keywordFamily, text string) string {
	for _, f := range families {
		if f.re.MatchString(text) {
			return f.label
		}
	}
	return ""
}

func trimCapture(s string) string {
	s = strings.TrimSpace(s)
	// fallback de rótulo pode capturar sobras; limita a 4 palavras
	if parts := strings.Fields(s); len(parts) > 4 {
		s = strings.Join(parts[:4], " ")
	}
	return s
}

func clampBedrooms(n int) *int {
	if n < BEDROOMS_MIN {
		n = BEDROOMS_MIN
	}
	if n > BEDROOMS_MAX {
		n = BEDROOMS_MAX
	}
	return &n
}

func extractBudget(text string) int64 {
	for _, r := range budgetRules {
		m := r.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		value, ok := parseDecimalBR(m[1])
		if !ok {
			continue
		}
		if len(m) > 2 {
			value *= magnitudeFactor(m[2])
		}
		if value <= 0 || math.IsNaN(value) || math.IsInf(value, 0) {
			continue
		}
		return int64(math.Round(value))
	}
	return 0
}

// parseDecimalBR interpreta número no formato brasileiro: ponto separa
// milhar, vírgula separa decimal ("500.000,00" -> 500000).
func parseDecimalBR(raw string) (float64, bool) {
	raw = strings.ReplaceAll(raw, ".", "")
	raw = strings.ReplaceAll(raw, ",", ".")
	raw = strings.Trim(raw, ".")
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func magnitudeFactor(word string) float64 {
	switch strings.ToLower(word) {
	case "mil", "k":
		return 1_000
	case "milhão", "milhao", "milhões", "milhoes", "mi":
		return 1_000_000
	}
	return 1
}
