package config

// Plano is a subscription tier. LimiteMotos bounds how many products the
// subscriber can list; -1 means unlimited.
type Plano struct {
	ID          string
	Nome        string
	Preco       float64
	PrecoAnual  float64
	LimiteMotos int
	Recursos    []string
	Destaque    bool
}

// Planos is the plan catalog. It mirrors the commercial offering and is a
// compile-time constant rather than configuration.
var Planos = map[string]Plano{
	"basico": {
		ID:          "basico",
		Nome:        "Básico",
		Preco:       29.90,
		PrecoAnual:  299.00,
		LimiteMotos: 10,
		Recursos: []string{
			"Vitrine personalizada",
			"Até 10 motos",
			"Link personalizado",
			"Botão WhatsApp",
			"Suporte por email",
		},
	},
	"profissional": {
		ID:          "profissional",
		Nome:        "Profissional",
		Preco:       49.90,
		PrecoAnual:  499.00,
		LimiteMotos: -1,
		Recursos: []string{
			"Tudo do Básico",
			"Motos ilimitadas",
			"Múltiplas imagens por moto",
			"Dashboard com métricas",
			"Destaque nas buscas",
			"Suporte prioritário",
		},
		Destaque: true,
	},
	"premium": {
		ID:          "premium",
		Nome:        "Premium",
		Preco:       99.90,
		PrecoAnual:  999.00,
		LimiteMotos: -1,
		Recursos: []string{
			"Tudo do Profissional",
			"Domínio personalizado",
			"Relatórios avançados",
			"Integração com CRM",
			"Gerente de conta dedicado",
		},
	},
}

// PlanoByID looks up a plan in the catalog.
func PlanoByID(id string) (Plano, bool) {
	p, ok := Planos[id]
	return p, ok
}
