package lang

import (
	"log/slog"
	"strings"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"
)

// locales maps lowercase "lang" and "lang_region" keys to the locales month
// and weekday names are available in. Regions without their own table fall
// back to the closest one.
var locales = map[string]monday.Locale{
	"en":    monday.LocaleEnUS,
	"en_us": monday.LocaleEnUS,
	"en_gb": monday.LocaleEnGB,
	"en_au": monday.LocaleEnUS,
	"de":    monday.LocaleDeDE,
	"de_de": monday.LocaleDeDE,
	"de_at": monday.LocaleDeDE,
	"de_ch": monday.LocaleDeDE,
	"fr":    monday.LocaleFrFR,
	"fr_fr": monday.LocaleFrFR,
	"fr_ca": monday.LocaleFrCA,
	"fr_be": monday.LocaleFrFR,
	"es":    monday.LocaleEsES,
	"es_es": monday.LocaleEsES,
	"es_mx": monday.LocaleEsES,
	"it":    monday.LocaleItIT,
	"it_it": monday.LocaleItIT,
	"pt":    monday.LocalePtPT,
	"pt_pt": monday.LocalePtPT,
	"pt_br": monday.LocalePtBR,
	"nl":    monday.LocaleNlNL,
	"nl_nl": monday.LocaleNlNL,
	"nl_be": monday.LocaleNlBE,
	"ru":    monday.LocaleRuRU,
	"ru_ru": monday.LocaleRuRU,
	"pl":    monday.LocalePlPL,
	"pl_pl": monday.LocalePlPL,
	"cs":    monday.LocaleCsCZ,
	"cs_cz": monday.LocaleCsCZ,
	"da":    monday.LocaleDaDK,
	"da_dk": monday.LocaleDaDK,
	"fi":    monday.LocaleFiFI,
	"fi_fi": monday.LocaleFiFI,
	"sv":    monday.LocaleSvSE,
	"sv_se": monday.LocaleSvSE,
	"nb":    monday.LocaleNbNO,
	"nb_no": monday.LocaleNbNO,
	"nn":    monday.LocaleNnNO,
	"nn_no": monday.LocaleNnNO,
	"ja":    monday.LocaleJaJP,
	"ja_jp": monday.LocaleJaJP,
	"zh":    monday.LocaleZhCN,
	"zh_cn": monday.LocaleZhCN,
	"zh_sg": monday.LocaleZhCN,
	"zh_tw": monday.LocaleZhTW,
	"zh_hk": monday.LocaleZhTW,
	"ko":    monday.LocaleKoKR,
	"ko_kr": monday.LocaleKoKR,
	"tr":    monday.LocaleTrTR,
	"tr_tr": monday.LocaleTrTR,
	"uk":    monday.LocaleUkUA,
	"uk_ua": monday.LocaleUkUA,
	"el":    monday.LocaleElGR,
	"el_gr": monday.LocaleElGR,
	"ro":    monday.LocaleRoRO,
	"ro_ro": monday.LocaleRoRO,
	"hu":    monday.LocaleHuHU,
	"hu_hu": monday.LocaleHuHU,
	"bg":    monday.LocaleBgBG,
	"bg_bg": monday.LocaleBgBG,
}

// ParseLocale resolves a BCP 47 or POSIX style language tag ("zh-CN",
// "zh_CN", "zh-Hant", "de") to a formatting locale. An empty tag is
// [DefaultLocale].
func ParseLocale(tag string) (monday.Locale, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return DefaultLocale, nil
	}

	// POSIX locale names may carry a codeset, e.g. "zh_CN.UTF-8".
	if i := strings.IndexAny(tag, ".@"); i > 0 {
		tag = tag[:i]
	}

	t, err := language.Parse(strings.ReplaceAll(tag, "_", "-"))
	if err != nil {
		return "", ErrLocale.
			With(slog.String("tag", tag)).
			Wrap(err)
	}

	base, _ := t.Base()
	lang := strings.ToLower(base.String())

	// The region may be inferred from the script, as with zh-Hant.
	if region, conf := t.Region(); conf != language.No {
		if l, ok := locales[lang+"_"+strings.ToLower(region.String())]; ok {
			return l, nil
		}
	}

	if l, ok := locales[lang]; ok {
		return l, nil
	}

	return "", ErrLocale.With(slog.String("tag", tag))
}

// localeTag returns the canonical tag of a locale, e.g. "zh-CN".
func localeTag(l monday.Locale) string {
	return strings.ReplaceAll(string(l), "_", "-")
}
