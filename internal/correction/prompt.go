package correction

import "fmt"

// promptTemplate asks for OCR typo fixes only and a JSON reply.
const promptTemplate = `Anda adalah ahli koreksi teks yang berpengalaman. Tugas Anda adalah memperbaiki kesalahan OCR (typo) dalam teks berikut, sambil mempertahankan format dan struktur asli.

TEKS OCR YANG PERLU DIKOREKSI:
%s

INSTRUKSI KOREKSI:
1. Perbaiki HANYA kesalahan ejaan/typo yang jelas dan pasti
2. Gunakan bahasa Indonesia yang benar dan konteks yang sesuai
3. Pertahankan format, spasi, dan struktur baris asli
4. Jangan tambahkan atau hapus informasi yang tidak perlu
5. Fokus pada kesalahan umum OCR: huruf terbalik, spasi berlebih, karakter salah
6. Pertahankan angka, tanggal, dan format khusus apa adanya

CONTOH KOREKSI UMUM:
- "Kerngi an" → "Kerugian"
- "lnventaris" → "Inventaris"
- "Pembiay aan" → "Pembiayaan"
- "Petap" → "Tetap"
- "Tanggal: 31 Ocsember" → "Tanggal: 31 Desember"
- "Harga: Rp 1.000.OOO" → "Harga: Rp 1.000.000"

RESPONSE FORMAT:
Berikan respon dalam format JSON:
{
    "corrected_text": "teks yang sudah dikoreksi",
    "corrections": [
        {"original": "kata asli", "corrected": "kata terkoreksi", "reason": "alasan koreksi"}
    ],
    "confidence": "nilai kepercayaan 1-10"
}

Berikan hanya JSON response, tanpa penjelasan tambahan.
`

// BuildPrompt embeds text verbatim into the correction instructions.
func BuildPrompt(text string) string {
	return fmt.Sprintf(promptTemplate, text)
}
