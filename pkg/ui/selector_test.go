package ui

import "testing"

func TestSelectorMatch(t *testing.T) {
	root := tree(t, `<div id="modal-1" class="modal docked">
		<div class="modal-header"><span class="modal-close">x</span></div>
		<div class="modal-body"><input id="name"><p class="note">hi</p></div>
	</div>`)
	closeBtn := root.First(".modal-close")
	input := root.First("#name")
	note := root.First("p")

	tests := []struct {
		selector string
		el       *Element
		want     bool
	}{
		{".modal-close", closeBtn, true},
		{"span.modal-close", closeBtn, true},
		{"div.modal-close", closeBtn, false},
		{"#modal-1 .modal-close", closeBtn, true},
		{"#modal-2 .modal-close", closeBtn, false},
		{".modal-body .modal-close", closeBtn, false},
		{"div.modal.docked .modal-header span", closeBtn, true},
		{"input, textarea, select", input, true},
		{"textarea, p.note", note, true},
		{"P.NOTE", note, false},
		{"p", note, true},
		{"*", note, true},
		{"", note, false},
	}
	for _, tt := range tests {
		if got := ParseSelector(tt.selector).Match(tt.el); got != tt.want {
			t.Errorf("%q matches <%s>: %v, want %v", tt.selector, tt.el.Tag, got, tt.want)
		}
	}
}
