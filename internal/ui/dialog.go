package ui

type dialogKind int

const (
	dialogInfo dialogKind = iota
	dialogWarning
	dialogError
	dialogConfirm
)

// dialog is a modal message. While one is open it receives every key.
type dialog struct {
	kind    dialogKind
	title   string
	message string
	onYes   rowAction
}

func infoDialog(title, message string) *dialog {
	return &dialog{kind: dialogInfo, title: title, message: message}
}

func warningDialog(title, message string) *dialog {
	return &dialog{kind: dialogWarning, title: title, message: message}
}

func errorDialog(title, message string) *dialog {
	return &dialog{kind: dialogError, title: title, message: message}
}

func confirmDialog(message string, onYes rowAction) *dialog {
	return &dialog{kind: dialogConfirm, title: "Confirm", message: message, onYes: onYes}
}

func (d dialog) hint() string {
	if d.kind == dialogConfirm {
		return "y yes • n no"
	}
	return "enter/esc close"
}
