package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Mohsinsiddi/w3fund/internal/contract"
)

// Confirm prompts the user with a yes/no question on stdin. Returns true for yes.
func Confirm(prompt string) bool {
	return ConfirmFrom(os.Stdin, os.Stderr, StyleWarning.Render(prompt))
}

// ConfirmDanger is like Confirm but styled for destructive actions.
func ConfirmDanger(prompt string) bool {
	return ConfirmFrom(os.Stdin, os.Stderr, StyleError.Render("⚠ "+prompt))
}

// ConfirmFrom reads one answer line from in.
func ConfirmFrom(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	line, _ := bufio.NewReader(in).ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "y" || line == "yes"
}

// TxPreview renders a transaction about to be signed.
func TxPreview(p contract.Preview) string {
	args := make([]string, 0, len(p.Args))
	for _, a := range p.Args {
		args = append(args, fmt.Sprint(a))
	}
	pairs := [][2]string{
		{"Contract", p.Contract + " " + Addr(p.To.Hex())},
		{"Call", p.Method + "(" + strings.Join(args, ", ") + ")"},
		{"From", Addr(p.From.Hex())},
		{"Gas limit", fmt.Sprintf("%d", p.Gas)},
	}
	if p.GasPrice != nil {
		pairs = append(pairs, [2]string{"Gas price", p.GasPrice.String() + " wei"})
	}
	if p.ChainID != nil {
		pairs = append(pairs, [2]string{"Chain ID", p.ChainID.String()})
	}
	return KeyValueBlock("Transaction", pairs)
}

// ConfirmTx prints the preview and asks before signing.
func ConfirmTx(p contract.Preview) bool {
	fmt.Fprintln(os.Stderr, TxPreview(p))
	return Confirm("Sign and send?")
}
