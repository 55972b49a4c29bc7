package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/soypat/saleae"
	"github.com/soypat/saleae/analyzers"

	"github.com/tinysdr/adf4351/regmap"
)

// adfanalyze decodes Saleae digital captures of an ADF4351 serial bus
// (CLK, LE, DATA) into register writes. Useful for checking that a driver
// or a vendor tool latches registers in the required 5..0 order and for
// recovering the frequency plan a black-box device programs.

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "adfanalyze - Decode Saleae digital data files of ADF4351 register transactions.\n\tUsage:\n")
		flag.PrintDefaults()
	}
	fdata := flag.String("f-data", "digital_1.bin", "Input filename: DATA line samples.")
	fle := flag.String("f-le", "digital_0.bin", "Input filename: LE (latch enable) samples.")
	fclk := flag.String("f-clk", "digital_2.bin", "Input filename: CLK samples.")
	output := flag.String("o", "registers.txt", "Output filename for decoded register writes.")
	refIn := flag.Uint64("ref", 25_000_000, "Reference input frequency in Hz, used to reconstruct programmed output frequency.")
	checkOrder := flag.Bool("check-order", true, "Warn when register sets are not latched in descending 5..0 order.")
	flag.Parse()

	start := time.Now()
	words, times, err := scanWords(*fdata, *fclk, *fle)
	if err != nil {
		log.Fatal(err.Error())
	}
	if err := report(*output, words, times, uint32(*refIn), *checkOrder); err != nil {
		log.Fatal(err.Error())
	}
	log.Println("decoded", len(words), "register writes in", time.Since(start))
}

func scanWords(fdata, fclk, fle string) (words []uint32, times []float64, err error) {
	data, err := opendigital(fdata)
	if err != nil {
		return nil, nil, err
	}
	clk, err := opendigital(fclk)
	if err != nil {
		return nil, nil, err
	}
	le, err := opendigital(fle)
	if err != nil {
		return nil, nil, err
	}
	// The ADF4351 bus is SPI mode 0 with LE acting as an active-low frame
	// marker between latch pulses, so the stock SPI analyzer applies.
	spi := analyzers.SPI{}
	txs, _ := spi.Scan(clk, le, data, data)
	for _, tx := range txs {
		if len(tx.SDO) < 4 {
			continue // glitch or partial frame
		}
		words = append(words, binary.BigEndian.Uint32(tx.SDO[:4]))
		times = append(times, tx.StartTime())
	}
	return words, times, nil
}

func opendigital(filename string) (*saleae.DigitalFile, error) {
	fp, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	df, err := saleae.ReadDigitalFile(fp)
	if err != nil {
		return nil, err
	}
	return df, nil
}

func report(output string, words []uint32, times []float64, refIn uint32, checkOrder bool) error {
	fp, err := os.Create(output)
	if err != nil {
		return err
	}
	defer fp.Close()

	rs := regmap.Empty()
	prevAddr := uint8(0)
	for i, w := range words {
		addr := regmap.Addr(w)
		fmt.Fprintf(fp, "t=%f R%d %#010x %s\n", times[i], addr, w, describe(w))
		if checkOrder && i > 0 && addr != prevAddr-1 && addr != 5 {
			fmt.Fprintf(fp, "\twarning: R%d after R%d breaks descending latch order\n", addr, prevAddr)
		}
		prevAddr = addr
		rs[addr] = w
		if addr == 0 {
			// Register 0 latches the full configuration; report what the
			// chip now synthesizes.
			fmt.Fprintf(fp, "\tapplied: fPFD=%d Hz fOUT=%d Hz\n",
				rs.PFDFrequency(refIn), rs.OutputFrequency(refIn))
		}
	}
	return nil
}

func describe(w uint32) string {
	switch regmap.Addr(w) {
	case 0:
		return fmt.Sprintf("INT=%d FRAC=%d",
			regmap.FieldInt.Get(w), regmap.FieldFrac.Get(w))
	case 1:
		return fmt.Sprintf("MOD=%d PHASE=%d prescaler=%s",
			regmap.FieldMod.Get(w), regmap.FieldPhase.Get(w),
			regmap.Prescaler(regmap.FieldPrescaler.Get(w)))
	case 2:
		return fmt.Sprintf("R=%d doubler=%d rdiv2=%d CP=%d muxout=%s",
			regmap.FieldRCounter.Get(w), regmap.FieldRefDoubler.Get(w),
			regmap.FieldRefDiv2.Get(w), regmap.FieldChargePumpCurrent.Get(w),
			regmap.Muxout(regmap.FieldMuxout.Get(w)))
	case 3:
		return fmt.Sprintf("clkdiv=%d csr=%d",
			regmap.FieldClockDivider.Get(w), regmap.FieldCSR.Get(w))
	case 4:
		return fmt.Sprintf("rfdiv=%d bandseldiv=%d rfen=%d pwr=%d",
			uint32(1)<<regmap.FieldRFDividerSelect.Get(w),
			regmap.FieldBandSelectClockDiv.Get(w),
			regmap.FieldRFEnable.Get(w), regmap.FieldOutputPower.Get(w))
	case 5:
		return fmt.Sprintf("lockdetect=%d", regmap.FieldLockDetectPin.Get(w))
	}
	return "reserved"
}
