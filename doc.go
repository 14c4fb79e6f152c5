// Package fastcrud é um serviço HTTP pequeno que expõe coleções de recursos
// em memória (usuarios e consolas) com operações de listagem, busca, criação,
// atualização e remoção, validando o corpo das requisições.
//
// Visão Geral:
// O núcleo é uma coleção genérica, instanciada uma vez por tipo de registro:
// 1. Repositório (easyrepo.MemoryRepository): sequência ordenada com ids únicos.
// 2. Serviço (easyrepo.EasyService): validação por struct tags e hooks.
// 3. Handlers (pkg/resource): as cinco rotas REST sobre gorilla/mux.
//
// Sub-Pacotes Principais:
//
// 1. envloader e pkg/config:
//   - Configuração em camadas: envDefault, YAML (default e por ambiente) e variáveis de ambiente.
//   - Validação estrutural com validator/v10.
//
// 2. pkg/transport:
//   - Roteador, middlewares de correlação, métricas, recovery e rate limit.
//   - Servidor HTTP com shutdown gracioso e adaptador para AWS Lambda.
//
// 3. pkg/logger, pkg/metrics e pkg/observability:
//   - Logs estruturados com zerolog e métricas via DogStatsD (Datadog).
//
// O binário fica em cmd/server.
package fastcrud
