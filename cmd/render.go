package cmd

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/terassyi/goratp/proto/ratp"
)

// renderHex prints data as 16 bytes per row prefixed with the address.
func renderHex(base uint64, data []byte) error {
	table := pterm.TableData{{"address", "data", "ascii"}}
	for off := 0; off < len(data); off += 16 {
		end := off + 16
		if end > len(data) {
			end = len(data)
		}
		row := data[off:end]
		hex := make([]string, len(row))
		ascii := make([]byte, len(row))
		for i, b := range row {
			hex[i] = fmt.Sprintf("%02x", b)
			if b >= 0x20 && b < 0x7f {
				ascii[i] = b
			} else {
				ascii[i] = '.'
			}
		}
		table = append(table, []string{fmt.Sprintf("%08x", base+uint64(off)), strings.Join(hex, " "), string(ascii)})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(table).Render()
}

func renderStats(s ratp.Stats) error {
	return pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
		{"srtt", "rto", "retransmits", "checksum errors"},
		{s.Srtt.String(), s.Rto.String(), fmt.Sprint(s.Retransmits), fmt.Sprint(s.ChecksumErrors)},
	}).Render()
}
