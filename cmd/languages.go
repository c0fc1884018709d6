/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// supportedLanguages maps display names to the ISO-639 codes accepted
// by the Translate v2 API.
var supportedLanguages = []struct {
	name string
	code string
}{
	{"Afrikaans", "af"}, {"Albanian", "sq"}, {"Amharic", "am"},
	{"Arabic", "ar"}, {"Armenian", "hy"}, {"Assamese", "as"},
	{"Aymara", "ay"}, {"Azerbaijani", "az"}, {"Bambara", "bm"},
	{"Basque", "eu"}, {"Belarusian", "be"}, {"Bengali", "bn"},
	{"Bhojpuri", "bho"}, {"Bosnian", "bs"}, {"Bulgarian", "bg"},
	{"Catalan", "ca"}, {"Cebuano", "ceb"}, {"Chinese (Simplified)", "zh-CN"},
	{"Chinese (Traditional)", "zh-TW"}, {"Corsican", "co"}, {"Czech", "cs"},
	{"Danish", "da"}, {"Dhivehi", "dv"}, {"Dogri", "doi"},
	{"Dutch", "nl"}, {"English", "en"}, {"Esperanto", "eo"},
	{"Estonian", "et"}, {"Ewe", "ee"}, {"Filipino (Tagalog)", "fil"},
	{"Finnish", "fi"}, {"French", "fr"}, {"Frisian", "fy"},
	{"Galician", "gl"}, {"Georgian", "ka"}, {"German", "de"},
	{"Greek", "el"}, {"Guarani", "gn"}, {"Gujarati", "gu"},
	{"Haitian Creole", "ht"}, {"Hausa", "ha"}, {"Hawaiian", "haw"},
	{"Hebrew", "he"}, {"Hindi", "hi"}, {"Hmong", "hmn"},
	{"Hungarian", "hu"}, {"Icelandic", "is"}, {"Igbo", "ig"},
	{"Ilocano", "ilo"}, {"Indonesian", "id"}, {"Irish", "ga"},
	{"Italian", "it"}, {"Japanese", "ja"}, {"Javanese", "jv"},
	{"Kannada", "kn"}, {"Kazakh", "kk"}, {"Khmer", "km"},
	{"Kinyarwanda", "rw"}, {"Konkani", "gom"}, {"Korean", "ko"},
	{"Krio", "kri"}, {"Kurdish", "ku"}, {"Kurdish (Sorani)", "ckb"},
	{"Kyrgyz", "ky"}, {"Lao", "lo"}, {"Latin", "la"},
	{"Latvian", "lv"}, {"Lingala", "ln"}, {"Lithuanian", "lt"},
	{"Luganda", "lg"}, {"Luxembourgish", "lb"}, {"Macedonian", "mk"},
	{"Maithili", "mai"}, {"Malagasy", "mg"}, {"Malay", "ms"},
	{"Malayalam", "ml"}, {"Maltese", "mt"}, {"Maori", "mi"},
	{"Marathi", "mr"}, {"Meiteilon (Manipuri)", "mni-Mtei"}, {"Mizo", "lus"},
	{"Mongolian", "mn"}, {"Myanmar (Burmese)", "my"}, {"Nepali", "ne"},
	{"Norwegian", "no"}, {"Nyanja (Chichewa)", "ny"}, {"Odia (Oriya)", "or"},
	{"Oromo", "om"}, {"Pashto", "ps"}, {"Persian", "fa"},
	{"Polish", "pl"}, {"Portuguese", "pt"}, {"Punjabi", "pa"},
	{"Quechua", "qu"}, {"Romanian", "ro"}, {"Russian", "ru"},
	{"Samoan", "sm"}, {"Sanskrit", "sa"}, {"Scots Gaelic", "gd"},
	{"Sepedi", "nso"}, {"Serbian", "sr"}, {"Sesotho", "st"},
	{"Shona", "sn"}, {"Sindhi", "sd"}, {"Sinhala", "si"},
	{"Slovak", "sk"}, {"Slovenian", "sl"}, {"Somali", "so"},
	{"Spanish", "es"}, {"Sundanese", "su"}, {"Swahili", "sw"},
	{"Swedish", "sv"}, {"Tagalog (Filipino)", "tl"}, {"Tajik", "tg"},
	{"Tamil", "ta"}, {"Tatar", "tt"}, {"Telugu", "te"},
	{"Thai", "th"}, {"Tigrinya", "ti"}, {"Tsonga", "ts"},
	{"Turkish", "tr"}, {"Turkmen", "tk"}, {"Twi (Akan)", "ak"},
	{"Ukrainian", "uk"}, {"Urdu", "ur"}, {"Uyghur", "ug"},
	{"Uzbek", "uz"}, {"Vietnamese", "vi"}, {"Welsh", "cy"},
	{"Xhosa", "xh"}, {"Yiddish", "yi"}, {"Yoruba", "yo"},
	{"Zulu", "zu"},
}

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List supported languages",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "LANGUAGE\tISO-639 CODE")
		for _, l := range supportedLanguages {
			fmt.Fprintf(w, "%s\t%s\n", l.name, l.code)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}
