package service

import (
	"fmt"
	"strings"
	"time"

	"bikeshare/pkg/model"
)

const (
	SubjectCheckout = "Aluguel realizado"
	SubjectReturn   = "Devolucao realizada"
)

const receiptTimeLayout = "02/01/2006 15:04"

func checkoutReceipt(rental *model.Rental, fees FeePolicy) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ola,\n\nSeu aluguel foi iniciado.\n\n")
	fmt.Fprintf(&b, "Bicicleta: %d\n", rental.BicycleID)
	fmt.Fprintf(&b, "Tranca: %d\n", rental.StartLockID)
	fmt.Fprintf(&b, "Horario: %s\n", rental.StartTime.Format(receiptTimeLayout))
	fmt.Fprintf(&b, "Valor cobrado: R$ %.2f\n\n", fees.BaseFee)
	fmt.Fprintf(&b, "Os primeiros %d minutos estao incluidos. Depois disso, cada %d minutos iniciados custam R$ %.2f.\n",
		fees.FreeMinutes, fees.BlockMinutes, fees.BlockFee)
	return b.String()
}

func returnReceipt(receipt *model.ReturnReceipt, fees FeePolicy) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ola,\n\nSua devolucao foi registrada.\n\n")
	fmt.Fprintf(&b, "Bicicleta: %d\n", receipt.Rental.BicycleID)
	if receipt.Rental.EndLockID != nil {
		fmt.Fprintf(&b, "Tranca: %d\n", *receipt.Rental.EndLockID)
	}
	fmt.Fprintf(&b, "Duracao: %s\n", formatDuration(receipt.TotalMinutes))
	fmt.Fprintf(&b, "Valor do aluguel: R$ %.2f\n", fees.BaseFee)
	if receipt.ExtraFee > 0 {
		fmt.Fprintf(&b, "Taxa extra: R$ %.2f\n", receipt.ExtraFee)
	}
	fmt.Fprintf(&b, "Total: R$ %.2f\n", receipt.TotalAmount)
	return b.String()
}

func formatDuration(minutes int64) string {
	d := time.Duration(minutes) * time.Minute
	hours := int64(d / time.Hour)
	rest := minutes - hours*60
	if hours == 0 {
		return fmt.Sprintf("%dmin", rest)
	}
	return fmt.Sprintf("%dh%02dmin", hours, rest)
}
