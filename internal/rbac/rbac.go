package rbac

// Role enumera os papéis reconhecidos pelo console administrativo.
type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleProfessor   Role = "PROFESSOR"
	RoleResponsavel Role = "RESPONSAVEL"
	RoleAluno       Role = "ALUNO"
)

// Section enumera as seções navegáveis do console.
type Section string

const (
	SectionPainel        Section = "painel"
	SectionAlunos        Section = "alunos"
	SectionProfessores   Section = "professores"
	SectionInstituicoes  Section = "instituicoes"
	SectionTurmas        Section = "turmas"
	SectionAgenda        Section = "agenda"
	SectionFinanceiro    Section = "financeiro"
	SectionRelatorios    Section = "relatorios"
	SectionConfiguracoes Section = "configuracoes"
)

// sections mapeia cada papel ao conjunto de seções visíveis. A tabela é
// estática: contrato de visibilidade, não fronteira de segurança — as rotas
// de escrita ainda exigem papel adequado no middleware.
var sections = map[Role][]Section{
	RoleAdmin: {
		SectionPainel, SectionAlunos, SectionProfessores, SectionInstituicoes,
		SectionTurmas, SectionAgenda, SectionFinanceiro, SectionRelatorios,
		SectionConfiguracoes,
	},
	RoleProfessor: {
		SectionPainel, SectionTurmas, SectionAgenda,
	},
	RoleResponsavel: {
		SectionPainel, SectionAgenda, SectionFinanceiro,
	},
	RoleAluno: {
		SectionPainel, SectionAgenda,
	},
}

// ParseRole normaliza a string persistida para um papel conhecido.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleAdmin, RoleProfessor, RoleResponsavel, RoleAluno:
		return Role(raw), true
	}
	return "", false
}

// SectionsFor devolve as seções visíveis para o papel, em ordem estável.
func SectionsFor(role Role) []Section {
	src := sections[role]
	out := make([]Section, len(src))
	copy(out, src)
	return out
}

// CanView indica se o papel enxerga a seção.
func CanView(role Role, section Section) bool {
	for _, s := range sections[role] {
		if s == section {
			return true
		}
	}
	return false
}
