package email

import (
	"bytes"
	"fmt"
	"html/template"

	"gadgetplan-api/models"
	"gadgetplan-api/utils"
)

var funcs = template.FuncMap{
	"rupiah":     utils.FormatRupiah,
	"priceRange": utils.FormatPriceRange,
}

const layoutTemplate = `{{define "layout"}}<!DOCTYPE html>
<html lang="id">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>GadgetPlan</title>
</head>
<body style="margin: 0; padding: 0; background-color: #E6F0FF; font-family: Arial, sans-serif; color: #002B50;">
    <table role="presentation" cellspacing="0" cellpadding="0" border="0" width="100%" style="background-color: #E6F0FF;">
        <tr>
            <td align="center" style="padding: 40px 20px;">
                <table role="presentation" cellspacing="0" cellpadding="0" border="0" width="600" style="background-color: #FDFEFF; border-radius: 16px;">
                    <tr>
                        <td style="padding: 32px;">
                            {{template "content" .}}
                        </td>
                    </tr>
                    <tr>
                        <td style="padding: 16px 32px; font-size: 12px; color: #6b7280; border-top: 1px solid #e5e7eb;">
                            GadgetPlan &middot; Email ini dikirim otomatis, mohon tidak dibalas.
                        </td>
                    </tr>
                </table>
            </td>
        </tr>
    </table>
</body>
</html>{{end}}`

const orderTemplate = `{{define "content"}}
<h2 style="margin-top: 0;">Terima kasih, {{.Shipping.FirstName}}!</h2>
<p>Pesanan <strong>#{{.OrderID}}</strong> telah kami terima.</p>
<table role="presentation" width="100%" cellspacing="0" cellpadding="6" style="border-collapse: collapse;">
    {{range .Items}}
    <tr>
        <td>{{.Name}}{{if .Storage}} &middot; {{.Storage}}{{end}}{{if .Color}} &middot; {{.Color}}{{end}} &times; {{.Quantity}}</td>
        <td align="right">{{rupiah .Price}}</td>
    </tr>
    {{end}}
    <tr><td>Subtotal</td><td align="right">{{rupiah .Summary.Subtotal}}</td></tr>
    <tr><td>Pajak (10%)</td><td align="right">{{rupiah .Summary.Tax}}</td></tr>
    <tr><td>Ongkos kirim ({{.ShippingMethod}})</td><td align="right">{{rupiah .Summary.ShippingCost}}</td></tr>
    <tr><td><strong>Total</strong></td><td align="right"><strong>{{rupiah .Summary.Total}}</strong></td></tr>
</table>
<p>Dikirim ke: {{.Shipping.Address}}, {{.Shipping.City}}, {{.Shipping.State}} {{.Shipping.ZipCode}}, {{.Shipping.Country}}</p>
<p>Metode pembayaran: {{.PaymentMethod}}</p>
{{end}}`

const bookingTemplate = `{{define "content"}}
<h2 style="margin-top: 0;">Jadwal servis Anda sudah tercatat</h2>
<p>Nomor booking: <strong>{{.BookingID}}</strong></p>
<ul>
    <li>Perangkat: {{.Request.DeviceModel}}</li>
    <li>Layanan: {{.ServiceName}}</li>
    <li>Jadwal: {{.Request.Date}} pukul {{.Request.Time}}</li>
    <li>Teknisi: {{.Technician}}</li>
    <li>Perkiraan biaya: {{priceRange .Estimate}}</li>
</ul>
{{end}}`

var (
	orderTmpl   = template.Must(template.Must(template.New("order").Funcs(funcs).Parse(layoutTemplate)).Parse(orderTemplate))
	bookingTmpl = template.Must(template.Must(template.New("booking").Funcs(funcs).Parse(layoutTemplate)).Parse(bookingTemplate))
)

func render(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", fmt.Errorf("render %s email: %w", t.Name(), err)
	}
	return buf.String(), nil
}

func RenderOrderConfirmation(order models.PlacedOrder) (string, error) {
	return render(orderTmpl, order)
}

func RenderBookingConfirmation(booking models.BookingConfirmation) (string, error) {
	return render(bookingTmpl, booking)
}
