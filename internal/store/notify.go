package store

// Notifier is the user-visible notification sink. The store invokes it with
// one deterministic Portuguese message per operation; how the text is
// presented (toast, terminal line) is the collaborator's concern.
type Notifier interface {
	ShowSuccess(text string)
	ShowError(text string)
	ShowInfo(text string)
}

// Notification message templates, one per operation.
const (
	msgAdded       = `Evento %q adicionado com sucesso!`
	msgUpdated     = "Evento atualizado com sucesso!"
	msgRemoved     = `Evento %q removido com sucesso!`
	msgToggled     = `Evento %q marcado como %s.`
	msgImported    = "%d eventos importados com sucesso!"
	msgImportEmpty = "Dados de importação inválidos ou vazios"
	msgImportNone  = "Nenhum evento válido encontrado na importação (%d registros rejeitados)"
)

// NopNotifier discards every notification. Useful for tests and for
// non-interactive callers.
type NopNotifier struct{}

func (NopNotifier) ShowSuccess(string) {}
func (NopNotifier) ShowError(string)   {}
func (NopNotifier) ShowInfo(string)    {}
