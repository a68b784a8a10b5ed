package models

// Stats aggregates platform counters and revenue for the admin dashboard.
// Admin accounts are excluded from the user counters.
type Stats struct {
	TotalUsuarios        int            `json:"total_usuarios"`
	UsuariosAtivos       int            `json:"usuarios_ativos"`
	UsuariosTrial        int            `json:"usuarios_trial"`
	UsuariosInadimplente int            `json:"usuarios_inadimplentes"`
	TotalVitrines        int            `json:"total_vitrines"`
	VitrinesPublicadas   int            `json:"vitrines_publicadas"`
	ReceitaMensal        float64        `json:"receita_mensal"`
	ReceitaTotal         float64        `json:"receita_total"`
	AssinaturasPorPlano  map[string]int `json:"assinaturas_por_plano"`
}
