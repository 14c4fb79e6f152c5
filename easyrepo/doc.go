/*
Package easyrepo fornece uma abstração genérica para o padrão Service-Repository
sobre coleções de recursos mantidas em memória.

O objetivo deste pacote é reduzir o boilerplate de serviços CRUD em Go, entregando:
  - Validação de entrada automática via struct tags (validator/v10), com mensagens
    legíveis no formato `"campo" ...`.
  - Operações CRUD padronizadas com suporte a Generics.
  - Um repositório em memória seguro para acesso concorrente, com política de
    geração de IDs configurável.

Exemplo de uso:

	type Item struct {
		models.Record
	}

	repo := easyrepo.NewMemoryRepository[Item](easyrepo.NextIDMax, seed...)
	service := easyrepo.NewService[Item](repo)
	created, err := service.Create(ctx, Item{Record: models.Record{Nombre: "Ana"}})
*/
package easyrepo
