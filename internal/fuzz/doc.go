// Package fuzztests houses Go fuzz harnesses that exercise the submission
// pipeline (source -> sanitize -> region -> similarity). Its goal is to smoke
// test robustness and guard against panics on arbitrary inputs.
//
// Назначение: загружать байты в FileSet, прогонять их через санитайзер и
// извлечение региона и проверять инварианты строк из testkit.
//
// Не делает: запуск внешних анализаторов, запись файлов, выполнение CLI.
//
// Зависимости: internal/source, internal/sanitize, internal/region,
// internal/similarity, internal/diag, internal/testkit.
package fuzztests
