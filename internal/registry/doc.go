// Package registry содержит пул воркеров и логику подбора
// воркера под task: фильтрация кандидатов, scoring, выбор лучшего.
//
// Registry не потокобезопасен сам по себе: все мутации выполняет
// единственный поток координатора.
package registry
