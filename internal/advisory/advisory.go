package advisory

import "context"

// FallbackMessage é devolvida quando o provedor generativo está indisponível
// ou sem credencial configurada.
const FallbackMessage = "Mantenha o acompanhamento das atividades e reforce a rotina de estudos. " +
	"Procure a coordenação para orientações personalizadas."

// Provider gera um texto curto de orientação a partir de um resumo de perfil.
// Uma chamada por invocação, sem retry e sem streaming.
type Provider interface {
	Generate(ctx context.Context, resumo string) (string, error)
}

// StaticProvider sempre devolve a mensagem fixa. Usado quando não há chave
// de API configurada e em testes.
type StaticProvider struct{}

func (StaticProvider) Generate(ctx context.Context, resumo string) (string, error) {
	return FallbackMessage, nil
}
